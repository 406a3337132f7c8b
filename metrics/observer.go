package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turbot/songplay-etl/events"
)

const namespace = "songplay_etl"

// Observer implements observable.Observer and records pipeline events as prometheus metrics
type Observer struct {
	registry *prometheus.Registry

	artifactsDiscovered *prometheus.CounterVec
	recordsRead         *prometheus.CounterVec
	stageRows           *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	rowsWritten         *prometheus.CounterVec
	filesWritten        *prometheus.CounterVec
	tableWriteDuration  *prometheus.HistogramVec
	runs                *prometheus.CounterVec
	errors              prometheus.Counter
}

// NewObserver creates an Observer with its own registry
func NewObserver() *Observer {
	return newObserver(prometheus.NewRegistry())
}

func newObserver(registry *prometheus.Registry) *Observer {
	durationBuckets := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800}

	o := &Observer{
		registry: registry,
		artifactsDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_discovered_total",
			Help:      "Input artifacts matched by the dataset pattern.",
		}, []string{"dataset"}),
		recordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Records decoded from input artifacts.",
		}, []string{"source"}),
		stageRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_total",
			Help:      "Rows produced by each pipeline stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency.",
			Buckets:   durationBuckets,
		}, []string{"stage"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written per output table.",
		}, []string{"table"}),
		filesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Files written per output table.",
		}, []string{"table"}),
		tableWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_write_duration_seconds",
			Help:      "Time taken to write each output table.",
			Buckets:   durationBuckets,
		}, []string{"table"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed pipeline runs by status.",
		}, []string{"status"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors raised by the pipeline.",
		}),
	}

	registry.MustRegister(
		o.artifactsDiscovered,
		o.recordsRead,
		o.stageRows,
		o.stageDuration,
		o.rowsWritten,
		o.filesWritten,
		o.tableWriteDuration,
		o.runs,
		o.errors,
	)
	return o
}

// Registry returns the registry the metrics are registered with
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

func (o *Observer) Notify(_ context.Context, e events.Event) error {
	switch ev := e.(type) {
	case *events.ArtifactsDiscovered:
		o.artifactsDiscovered.WithLabelValues(ev.Dataset).Add(float64(ev.Count))
	case *events.ArtifactLoaded:
		source := ""
		if ev.Info != nil {
			source = ev.Info.SourceType
		}
		o.recordsRead.WithLabelValues(source).Add(float64(ev.RecordCount))
	case *events.StageCompleted:
		o.stageRows.WithLabelValues(ev.Stage).Add(float64(ev.Rows))
		o.stageDuration.WithLabelValues(ev.Stage).Observe(ev.Duration.Seconds())
	case *events.TableWritten:
		o.rowsWritten.WithLabelValues(ev.Table).Add(float64(ev.Rows))
		o.filesWritten.WithLabelValues(ev.Table).Add(float64(len(ev.Files)))
		o.tableWriteDuration.WithLabelValues(ev.Table).Observe(ev.Duration.Seconds())
	case *events.Completed:
		status := "success"
		if ev.Err != nil {
			status = "error"
		}
		o.runs.WithLabelValues(status).Inc()
	case *events.Error:
		o.errors.Inc()
	}
	return nil
}

// WriteToTextfile writes the current metric values to path in the node exporter textfile format
func (o *Observer) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.registry); err != nil {
		return fmt.Errorf("failed to write metrics to '%s': %w", path, err)
	}
	return nil
}
