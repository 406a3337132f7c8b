package row_source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/turbot/songplay-etl/types"
)

// recordDecoder decodes a stream of concatenated JSON objects, which may span lines
type recordDecoder struct {
	artifact string
	// text of an incomplete value carried over from previous lines
	pending   string
	startLine int
}

func newRecordDecoder(artifact string) *recordDecoder {
	return &recordDecoder{artifact: artifact}
}

// add decodes all complete values which end on this line
func (d *recordDecoder) add(row *types.RowData) ([]types.Record, error) {
	if d.pending == "" {
		d.startLine = row.Line
		d.pending = row.Data
	} else {
		d.pending += "\n" + row.Data
	}

	dec := json.NewDecoder(strings.NewReader(d.pending))
	dec.UseNumber()

	var res []types.Record
	var consumed int64
	for {
		var v any
		err := dec.Decode(&v)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			d.pending = ""
			return res, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			// incomplete value, wait for more lines
			if consumed > 0 {
				d.startLine = row.Line
			}
			d.pending = strings.TrimSpace(d.pending[consumed:])
			return res, nil
		default:
			return nil, types.NewParseError(d.artifact, d.startLine, err)
		}

		obj, ok := v.(map[string]any)
		if !ok {
			return nil, types.NewParseError(d.artifact, d.startLine, fmt.Errorf("expected a JSON object, got %s", jsonKind(v)))
		}
		res = append(res, types.Record(obj))
		consumed = dec.InputOffset()
	}
}

// finish returns a ParseError if an incomplete value remains
func (d *recordDecoder) finish() error {
	if strings.TrimSpace(d.pending) != "" {
		return types.NewParseError(d.artifact, d.startLine, io.ErrUnexpectedEOF)
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
