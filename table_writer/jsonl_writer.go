package table_writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/turbot/songplay-etl/tables"
)

const JSONLWriterIdentifier = "jsonl"

// JSONLWriter implements [RowWriter] and writes one JSON object per line
type JSONLWriter[T tables.Row] struct{}

func NewJSONLWriter[T tables.Row]() *JSONLWriter[T] {
	return &JSONLWriter[T]{}
}

func (j *JSONLWriter[T]) Identifier() string {
	return JSONLWriterIdentifier
}

func (j *JSONLWriter[T]) Extension() string {
	return ".jsonl"
}

func (j *JSONLWriter[T]) WriteRows(w io.Writer, rows []T) error {
	encoder := json.NewEncoder(w)
	for i, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}
	return nil
}
