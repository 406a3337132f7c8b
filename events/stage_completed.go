package events

import "time"

// StageCompleted is raised when a pipeline stage (read, filter, project, decompose, join) has produced its output
type StageCompleted struct {
	Base
	ExecutionId string
	Stage       string
	Rows        int
	Duration    time.Duration
}

func NewStageCompletedEvent(executionId, stage string, rows int, duration time.Duration) *StageCompleted {
	return &StageCompleted{
		ExecutionId: executionId,
		Stage:       stage,
		Rows:        rows,
		Duration:    duration,
	}
}
