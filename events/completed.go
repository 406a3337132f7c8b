package events

import "github.com/turbot/songplay-etl/types"

type Completed struct {
	Base
	ExecutionId string
	// row counts keyed by table name
	RowCounts    map[string]int
	FilesWritten int
	Err          error
	Timing       types.TimingMap
}

func NewCompletedEvent(executionId string, rowCounts map[string]int, filesWritten int, timing types.TimingMap, err error) *Completed {
	return &Completed{
		ExecutionId:  executionId,
		RowCounts:    rowCounts,
		FilesWritten: filesWritten,
		Timing:       timing,
		Err:          err,
	}
}
