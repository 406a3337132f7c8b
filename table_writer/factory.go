package table_writer

import (
	"fmt"

	"github.com/turbot/songplay-etl/tables"
)

// Formats returns the identifiers of the supported output formats
func Formats() []string {
	return []string{ParquetWriterIdentifier, JSONLWriterIdentifier}
}

// NewRowWriter returns the [RowWriter] for the given output format
func NewRowWriter[T tables.Row](format string) (RowWriter[T], error) {
	switch format {
	case ParquetWriterIdentifier, "":
		return NewParquetWriter[T](), nil
	case JSONLWriterIdentifier:
		return NewJSONLWriter[T](), nil
	default:
		return nil, fmt.Errorf("unsupported output format '%s'", format)
	}
}
