package events

import "time"

type TableWritten struct {
	Base
	ExecutionId string
	Table       string
	Rows        int
	Files       []string
	Duration    time.Duration
}

func NewTableWrittenEvent(executionId, table string, rows int, files []string, duration time.Duration) *TableWritten {
	return &TableWritten{
		ExecutionId: executionId,
		Table:       table,
		Rows:        rows,
		Files:       files,
		Duration:    duration,
	}
}
