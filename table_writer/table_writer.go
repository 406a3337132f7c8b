package table_writer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"time"

	"golang.org/x/exp/maps"

	"github.com/turbot/songplay-etl/context_values"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/destination"
	"github.com/turbot/songplay-etl/schema"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/types"
)

// TableWriter writes tables under a destination root, one sub-path per table
type TableWriter struct {
	dest   destination.Destination
	format string
	// partition columns keyed by table name, overriding the table default
	partitionBy map[string][]string
}

func NewTableWriter(dest destination.Destination, format string, partitionBy map[string][]string) *TableWriter {
	return &TableWriter{
		dest:        dest,
		format:      format,
		partitionBy: partitionBy,
	}
}

// PartitionBy returns the partition columns used for the table
func (tw *TableWriter) PartitionBy(table tables.Table) []string {
	if cols, ok := tw.partitionBy[table.Name]; ok {
		return cols
	}
	return table.DefaultPartitionBy
}

// Result describes a written table
type Result struct {
	Table    string
	Rows     int
	Files    []string
	Duration time.Duration
}

// WriteTable writes every row of the dataset as the given table: one file per partition directory,
// named part-<executionId>-<n>. Existing files of the same name are overwritten.
// Any failure is returned as a [types.WriteError]; files already written are left in place
func WriteTable[T tables.Row](ctx context.Context, tw *TableWriter, table tables.Table, d *dataset.Dataset[T]) (*Result, error) {
	start := time.Now()
	executionId, err := context_values.ExecutionIdFromContext(ctx)
	if err != nil {
		return nil, types.NewWriteError(table.Name, "", err)
	}
	if _, err := schema.ForTable(table.Name); err != nil {
		return nil, types.NewWriteError(table.Name, "", err)
	}
	partitionBy := tw.PartitionBy(table)
	if err := table.ValidatePartitionBy(partitionBy); err != nil {
		return nil, types.NewWriteError(table.Name, "", err)
	}
	rowWriter, err := NewRowWriter[T](tw.format)
	if err != nil {
		return nil, types.NewWriteError(table.Name, "", err)
	}

	rows := d.Collect()
	groups := make(map[string][]T)
	for _, row := range rows {
		dir := partitionDir(partitionBy, row.PartitionValues())
		groups[dir] = append(groups[dir], row)
	}
	dirs := maps.Keys(groups)
	slices.Sort(dirs)

	res := &Result{Table: table.Name, Rows: len(rows)}
	for n, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return res, types.NewWriteError(table.Name, "", err)
		}
		relPath := path.Join(table.Name, dir, PartFileName(executionId, n, rowWriter.Extension()))
		location := tw.dest.Location(relPath)
		if err := writeFile(ctx, tw.dest, relPath, rowWriter, groups[dir]); err != nil {
			slog.Error("failed to write table file", "table", table.Name, "file", location, "error", err)
			return res, types.NewWriteError(table.Name, location, err)
		}
		slog.Debug("wrote table file", "table", table.Name, "file", location, "rows", len(groups[dir]))
		res.Files = append(res.Files, location)
	}
	res.Duration = time.Since(start)

	slog.Info("table written", "table", table.Name, "format", rowWriter.Identifier(), "rows", res.Rows, "files", len(res.Files), "duration", res.Duration)
	return res, nil
}

func writeFile[T tables.Row](ctx context.Context, dest destination.Destination, relPath string, rowWriter RowWriter[T], rows []T) (err error) {
	w, err := dest.Create(ctx, relPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
	}()
	return rowWriter.WriteRows(w, rows)
}
