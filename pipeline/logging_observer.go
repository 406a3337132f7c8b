package pipeline

import (
	"context"
	"log/slog"

	"github.com/turbot/songplay-etl/events"
)

// LoggingObserver implements observable.Observer and logs pipeline events
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver returns an observer logging to the given logger, or the default logger if nil
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) Notify(ctx context.Context, e events.Event) error {
	switch ev := e.(type) {
	case *events.Started:
		o.logger.InfoContext(ctx, "run started", "execution_id", ev.ExecutionId)
	case *events.ArtifactsDiscovered:
		o.logger.InfoContext(ctx, "artifacts discovered", "execution_id", ev.ExecutionId, "dataset", ev.Dataset, "count", ev.Count)
	case *events.ArtifactLoaded:
		if ev.Info == nil {
			return nil
		}
		o.logger.DebugContext(ctx, "artifact loaded", "execution_id", ev.ExecutionId, "artifact", ev.Info.OriginalName, "records", ev.RecordCount)
	case *events.StageCompleted:
		o.logger.InfoContext(ctx, "stage completed", "execution_id", ev.ExecutionId, "stage", ev.Stage, "rows", ev.Rows, "duration", ev.Duration)
	case *events.TableWritten:
		o.logger.InfoContext(ctx, "table written", "execution_id", ev.ExecutionId, "table", ev.Table, "rows", ev.Rows, "files", len(ev.Files), "duration", ev.Duration)
	case *events.Error:
		o.logger.ErrorContext(ctx, "run failed", "execution_id", ev.ExecutionId, "error", ev.Err)
	case *events.Completed:
		o.logger.InfoContext(ctx, "run completed", "execution_id", ev.ExecutionId, "rows", ev.RowCounts, "files", ev.FilesWritten, "success", ev.Err == nil)
	}
	return nil
}
