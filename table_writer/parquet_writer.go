package table_writer

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/turbot/songplay-etl/tables"
)

const (
	ParquetWriterIdentifier   = "parquet"
	defaultParquetParallelism = 4
)

// ParquetWriter implements [RowWriter] and writes SNAPPY compressed parquet,
// with the schema taken from the parquet tags of T
type ParquetWriter[T tables.Row] struct {
	// number of goroutines used to marshal each row group
	Parallelism int64
}

func NewParquetWriter[T tables.Row]() *ParquetWriter[T] {
	return &ParquetWriter[T]{Parallelism: defaultParquetParallelism}
}

func (p *ParquetWriter[T]) Identifier() string {
	return ParquetWriterIdentifier
}

func (p *ParquetWriter[T]) Extension() string {
	return ".parquet"
}

func (p *ParquetWriter[T]) WriteRows(w io.Writer, rows []T) error {
	np := p.Parallelism
	if np <= 0 {
		np = defaultParquetParallelism
	}
	pw, err := writer.NewParquetWriter(writerfile.NewWriterFile(w), new(T), np)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, row := range rows {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalise parquet file: %w", err)
	}
	return nil
}
