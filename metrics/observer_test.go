package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbot/songplay-etl/events"
	"github.com/turbot/songplay-etl/types"
)

func TestObserver_Notify(t *testing.T) {
	ctx := context.Background()
	o := NewObserver()

	info := types.NewArtifactInfo("log_data/2018/11/a.json", types.WithSource("file_system", "/data"))
	notifications := []events.Event{
		events.NewStartedEvent("exec-1"),
		events.NewArtifactsDiscoveredEvent("exec-1", "activity", 2),
		events.NewArtifactLoadedEvent("exec-1", info, 10),
		events.NewArtifactLoadedEvent("exec-1", info, 5),
		events.NewStageCompletedEvent("exec-1", "filter", 7, time.Second),
		events.NewTableWrittenEvent("exec-1", "songplays", 3, []string{"a", "b"}, time.Second),
		events.NewErrorEvent("exec-1", errors.New("boom")),
		events.NewCompletedEvent("exec-1", nil, 2, nil, nil),
	}
	for _, e := range notifications {
		require.NoError(t, o.Notify(ctx, e))
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "artifacts", got: testutil.ToFloat64(o.artifactsDiscovered.WithLabelValues("activity")), want: 2},
		{name: "records", got: testutil.ToFloat64(o.recordsRead.WithLabelValues("file_system")), want: 15},
		{name: "stage rows", got: testutil.ToFloat64(o.stageRows.WithLabelValues("filter")), want: 7},
		{name: "rows written", got: testutil.ToFloat64(o.rowsWritten.WithLabelValues("songplays")), want: 3},
		{name: "files written", got: testutil.ToFloat64(o.filesWritten.WithLabelValues("songplays")), want: 2},
		{name: "errors", got: testutil.ToFloat64(o.errors), want: 1},
		{name: "successful runs", got: testutil.ToFloat64(o.runs.WithLabelValues("success")), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestObserver_WriteToTextfile(t *testing.T) {
	o := NewObserver()
	require.NoError(t, o.Notify(context.Background(), events.NewTableWrittenEvent("exec-1", "songs", 4, []string{"f"}, time.Millisecond)))

	path := filepath.Join(t.TempDir(), "etl.prom")
	require.NoError(t, o.WriteToTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `songplay_etl_rows_written_total{table="songs"} 4`)
}
