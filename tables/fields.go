package tables

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/turbot/songplay-etl/types"
)

var errNull = errors.New("null value for non-nullable field")

// fieldReader extracts typed values from a record, accumulating the first error
type fieldReader struct {
	stage  string
	record types.Record
	err    error
}

func newFieldReader(stage string, record types.Record, required []string) *fieldReader {
	r := &fieldReader{stage: stage, record: record}
	if missing := record.MissingFields(required...); len(missing) > 0 {
		r.err = types.NewParseError(stage, 0, fmt.Errorf("missing required fields %v in record %s", missing, record.String()))
	}
	return r
}

func (r *fieldReader) fail(field string, value any, err error) {
	if r.err == nil {
		r.err = types.NewTransformError(r.stage, field, value, err)
	}
}

func (r *fieldReader) optionalString(field string) *string {
	v := r.record[field]
	if v == nil || r.err != nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, v, fmt.Errorf("expected string"))
		return nil
	}
	return &s
}

func (r *fieldReader) string(field string) string {
	if r.err == nil && r.record[field] == nil {
		r.fail(field, nil, errNull)
	}
	s := r.optionalString(field)
	if s == nil {
		return ""
	}
	return *s
}

// stringOrNumber accepts a JSON string or number, returning its text
func (r *fieldReader) stringOrNumber(field string) string {
	if r.err != nil {
		return ""
	}
	switch v := r.record[field].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		r.fail(field, nil, errNull)
	default:
		r.fail(field, v, fmt.Errorf("expected string or number"))
	}
	return ""
}

func (r *fieldReader) optionalFloat(field string) *float64 {
	v := r.record[field]
	if v == nil || r.err != nil {
		return nil
	}
	n, ok := v.(json.Number)
	if !ok {
		r.fail(field, v, fmt.Errorf("expected number"))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		r.fail(field, v, err)
		return nil
	}
	return &f
}

func (r *fieldReader) float(field string) float64 {
	if r.err == nil && r.record[field] == nil {
		r.fail(field, nil, errNull)
	}
	f := r.optionalFloat(field)
	if f == nil {
		return 0
	}
	return *f
}

// int accepts an integral JSON number, or a string containing one
func (r *fieldReader) int(field string) int64 {
	if r.err != nil {
		return 0
	}
	var text string
	switch v := r.record[field].(type) {
	case json.Number:
		text = v.String()
	case string:
		text = v
	case nil:
		r.fail(field, nil, errNull)
		return 0
	default:
		r.fail(field, v, fmt.Errorf("expected integer"))
		return 0
	}
	i, err := parseInt(text)
	if err != nil {
		r.fail(field, r.record[field], err)
	}
	return i
}

// int32 is int with the value range-checked to 32 bits
func (r *fieldReader) int32(field string) int32 {
	i := r.int(field)
	if i > math.MaxInt32 || i < math.MinInt32 {
		r.fail(field, r.record[field], fmt.Errorf("integer %d out of range for int32", i))
		return 0
	}
	return int32(i)
}

// number returns the field as a numeric literal without validating it
// strings are accepted and validated when the value is used
func (r *fieldReader) number(field string) json.Number {
	if r.err != nil {
		return ""
	}
	switch v := r.record[field].(type) {
	case json.Number:
		return v
	case string:
		return json.Number(v)
	case nil:
		r.fail(field, nil, errNull)
	default:
		r.fail(field, v, fmt.Errorf("expected number"))
	}
	return ""
}

// parseInt parses an integer, accepting integral floats such as "1999.0"
func parseInt(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer")
	}
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("expected integer")
	}
	return int64(f), nil
}
