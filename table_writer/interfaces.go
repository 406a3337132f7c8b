package table_writer

import (
	"io"

	"github.com/turbot/songplay-etl/tables"
)

// RowWriter encodes the rows of one partition of a table to a single file
// Writers provided: [ParquetWriter], [JSONLWriter]
type RowWriter[T tables.Row] interface {
	Identifier() string
	// Extension returns the file extension, including the leading dot
	Extension() string
	WriteRows(w io.Writer, rows []T) error
}
