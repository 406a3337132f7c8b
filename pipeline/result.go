package pipeline

import (
	"github.com/turbot/songplay-etl/table_writer"
	"github.com/turbot/songplay-etl/types"
)

// Result describes a completed run
type Result struct {
	ExecutionId string
	// row counts keyed by table name
	RowCounts map[string]int
	// files written keyed by table name
	Files  map[string][]string
	Timing types.TimingMap
}

func newResult(executionId string) *Result {
	return &Result{
		ExecutionId: executionId,
		RowCounts:   make(map[string]int),
		Files:       make(map[string][]string),
		Timing:      make(types.TimingMap),
	}
}

func (r *Result) addTable(t *table_writer.Result) {
	r.RowCounts[t.Table] = t.Rows
	r.Files[t.Table] = t.Files
}

func (r *Result) FilesWritten() int {
	count := 0
	for _, f := range r.Files {
		count += len(f)
	}
	return count
}
