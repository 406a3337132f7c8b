package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turbot/songplay-etl/artifact_source"
	"github.com/turbot/songplay-etl/config"
	"github.com/turbot/songplay-etl/context_values"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/destination"
	"github.com/turbot/songplay-etl/events"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/observable"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/row_source"
	"github.com/turbot/songplay-etl/table_writer"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/transform"
	"github.com/turbot/songplay-etl/types"
)

const (
	datasetCatalog  = "catalog"
	datasetActivity = "activity"
)

// Pipeline transforms the song catalog and activity log into the star schema tables
//
// Stages run in order read -> decode -> filter -> project -> decompose -> join -> write. Every stage but the
// write is a pure dataset transformation evaluated by the executor; writes are the only side effect
// and are not retried
type Pipeline struct {
	observable.ObservableImpl

	cfg          *config.Config
	source       artifact_source.Source
	dest         destination.Destination
	idGenerator  id_generator.Generator
	executor     dataset.Executor
	limiter      *rate_limiter.APILimiter
	location     *time.Location
	outputFormat string
	observers    []observable.Observer
	phases       []Phase

	// whether the source and destination were built from the config, and so are closed by the pipeline
	ownsSource bool
	ownsDest   bool

	// the catalog decoded by ProcessSongData, reused by ProcessLogData for the join
	catalogMut sync.Mutex
	catalog    *dataset.Dataset[tables.CatalogRecord]

	result *Result
}

// New validates the config and creates a pipeline. Collaborators not supplied by options are built from the config
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if p.outputFormat == "" {
		p.outputFormat = cfg.OutputFormat
	} else if !slices.Contains(table_writer.Formats(), p.outputFormat) {
		return nil, fmt.Errorf("unsupported output format '%s'", p.outputFormat)
	}

	var err error
	if p.location, err = cfg.Location(); err != nil {
		return nil, err
	}
	if p.idGenerator == nil {
		if p.idGenerator, err = cfg.NewIdGenerator(); err != nil {
			return nil, err
		}
	}
	if p.executor == nil {
		p.executor = dataset.NewParallelExecutor(cfg.Parallelism)
	}
	if len(p.phases) == 0 {
		p.phases = []Phase{PhaseSongs, PhaseLogs}
	}
	p.limiter = rate_limiter.NewAPILimiter(cfg.RateLimiterDefinition())

	for _, o := range p.observers {
		if err := p.AddObserver(o); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run executes the configured phases and returns the row counts, files and stage timings of the run.
// A new execution id is generated unless the context already carries one.
// On failure the result records the tables written before the error
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	executionId, idErr := context_values.ExecutionIdFromContext(ctx)
	if idErr != nil {
		executionId = uuid.NewString()
		ctx = context_values.WithExecutionId(ctx, executionId)
	}
	p.result = newResult(executionId)
	p.catalogMut.Lock()
	p.catalog = nil
	p.catalogMut.Unlock()
	slog.Info("pipeline run starting", "execution_id", executionId, "phases", p.phases, "format", p.outputFormat)

	defer func() {
		if err != nil {
			p.notify(ctx, events.NewErrorEvent(executionId, err))
		}
		p.notify(ctx, events.NewCompletedEvent(executionId, p.result.RowCounts, p.result.FilesWritten(), p.result.Timing, err))
		if closeErr := p.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
		res = p.result
	}()

	p.notify(ctx, events.NewStartedEvent(executionId))

	if slices.Contains(p.phases, PhaseSongs) {
		if err := p.ProcessSongData(ctx); err != nil {
			return nil, err
		}
	}
	if slices.Contains(p.phases, PhaseLogs) {
		if err := p.ProcessLogData(ctx); err != nil {
			return nil, err
		}
	}
	slog.Info("pipeline run complete", "execution_id", executionId, "rows", p.result.RowCounts, "files", p.result.FilesWritten())
	return p.result, nil
}

// ProcessSongData reads the catalog and writes the songs and artists tables
func (p *Pipeline) ProcessSongData(ctx context.Context) error {
	ctx = p.ensureRun(ctx)
	catalog, err := p.readCatalog(ctx)
	if err != nil {
		return err
	}

	songs, err := stage(ctx, p, "project_songs", func() (*dataset.Dataset[tables.Song], error) {
		return transform.ProjectSongs(ctx, catalog)
	})
	if err != nil {
		return err
	}
	if err := writeTable(ctx, p, tables.TableSongs, songs); err != nil {
		return err
	}

	artists, err := stage(ctx, p, "project_artists", func() (*dataset.Dataset[tables.Artist], error) {
		return transform.ProjectArtists(ctx, catalog)
	})
	if err != nil {
		return err
	}
	return writeTable(ctx, p, tables.TableArtists, artists)
}

// ProcessLogData reads the activity log and writes the users, time and songplays tables.
// The catalog is read if ProcessSongData has not already been run
func (p *Pipeline) ProcessLogData(ctx context.Context) error {
	ctx = p.ensureRun(ctx)
	activity, err := p.readDataset(ctx, datasetActivity)
	if err != nil {
		return err
	}
	decoded, err := stage(ctx, p, "decode_activity", func() (*dataset.Dataset[tables.ActivityRecord], error) {
		return transform.DecodeActivity(ctx, activity)
	})
	if err != nil {
		return err
	}

	// users
	userActivity, err := stage(ctx, p, "filter_users", func() (*dataset.Dataset[tables.ActivityRecord], error) {
		return transform.FilterPages(ctx, decoded, transform.UserPages...)
	})
	if err != nil {
		return err
	}
	users, err := stage(ctx, p, "project_users", func() (*dataset.Dataset[tables.User], error) {
		return transform.ProjectUsers(ctx, userActivity)
	})
	if err != nil {
		return err
	}
	if err := writeTable(ctx, p, tables.TableUsers, users); err != nil {
		return err
	}

	// time
	timeRows, err := stage(ctx, p, "decompose", func() (*dataset.Dataset[tables.Time], error) {
		return transform.TimeRows(ctx, decoded, p.idGenerator, p.location)
	})
	if err != nil {
		return err
	}
	if err := writeTable(ctx, p, tables.TableTime, timeRows); err != nil {
		return err
	}

	// songplays
	catalog, err := p.readCatalog(ctx)
	if err != nil {
		return err
	}
	joinType, err := p.cfg.JoinType()
	if err != nil {
		return err
	}
	songplays, err := stage(ctx, p, "join", func() (*dataset.Dataset[tables.Songplay], error) {
		return transform.JoinSongplays(ctx, decoded, catalog, transform.JoinOptions{
			Type:      joinType,
			Match:     p.cfg.MatchPolicy(),
			Generator: p.idGenerator,
			Location:  p.location,
		})
	})
	if err != nil {
		return err
	}
	return writeTable(ctx, p, tables.TableSongplays, songplays)
}

// readCatalog returns the decoded catalog, reading it on first use
func (p *Pipeline) readCatalog(ctx context.Context) (*dataset.Dataset[tables.CatalogRecord], error) {
	p.catalogMut.Lock()
	defer p.catalogMut.Unlock()
	if p.catalog != nil {
		return p.catalog, nil
	}

	records, err := p.readDataset(ctx, datasetCatalog)
	if err != nil {
		return nil, err
	}
	catalog, err := stage(ctx, p, "decode_catalog", func() (*dataset.Dataset[tables.CatalogRecord], error) {
		return transform.DecodeCatalog(ctx, records)
	})
	if err != nil {
		return nil, err
	}
	p.catalog = catalog
	return catalog, nil
}

func (p *Pipeline) readDataset(ctx context.Context, name string) (*dataset.Dataset[types.Record], error) {
	if err := p.ensureStorage(ctx); err != nil {
		return nil, err
	}
	pattern, err := p.pattern(name)
	if err != nil {
		return nil, err
	}

	rowSource := row_source.NewArtifactRowSource(p.source,
		row_source.WithExecutor(p.executor),
		row_source.WithDownloadLimiter(p.limiter))
	// forward row source events to our observers
	if err := rowSource.AddObserver(observable.ObserverFunc(func(ctx context.Context, e events.Event) error {
		return p.NotifyObservers(ctx, e)
	})); err != nil {
		return nil, err
	}

	return stage(ctx, p, "read_"+name, func() (*dataset.Dataset[types.Record], error) {
		return rowSource.Read(ctx, name, pattern)
	})
}

func (p *Pipeline) pattern(name string) (*artifact_source.Pattern, error) {
	if name == datasetCatalog {
		return p.cfg.CatalogGlob()
	}
	return p.cfg.ActivityGlob()
}

// ensureStorage builds the source and destination from the config if they were not supplied as options
func (p *Pipeline) ensureStorage(ctx context.Context) error {
	if p.source == nil {
		root, err := p.cfg.InputLocation()
		if err != nil {
			return err
		}
		if p.source, err = artifact_source.NewSource(ctx, root, p.cfg.Connections()); err != nil {
			return types.NewReadError(root.String(), err)
		}
		p.ownsSource = true
	}
	if p.dest == nil {
		root, err := p.cfg.OutputLocation()
		if err != nil {
			return err
		}
		if p.dest, err = destination.NewDestination(ctx, root, p.cfg.Connections(), p.limiter); err != nil {
			return types.NewWriteError("", root.String(), err)
		}
		p.ownsDest = true
	}
	return nil
}

// Close closes the source and destination built from the config. It is called by Run and
// need only be called after running phases directly
func (p *Pipeline) Close() error {
	var errs []error
	if p.ownsSource && p.source != nil {
		errs = append(errs, p.source.Close())
		p.source, p.ownsSource = nil, false
	}
	if p.ownsDest && p.dest != nil {
		errs = append(errs, p.dest.Close())
		p.dest, p.ownsDest = nil, false
	}
	return errors.Join(errs...)
}

// ensureRun makes phases callable outside Run, giving them an execution id and a result to record into
func (p *Pipeline) ensureRun(ctx context.Context) context.Context {
	executionId, err := context_values.ExecutionIdFromContext(ctx)
	if err != nil {
		executionId = uuid.NewString()
		ctx = context_values.WithExecutionId(ctx, executionId)
	}
	if p.result == nil || p.result.ExecutionId != executionId {
		p.result = newResult(executionId)
	}
	return ctx
}

// Result returns the result of the most recent run or phase
func (p *Pipeline) Result() *Result {
	return p.result
}

func (p *Pipeline) notify(ctx context.Context, e events.Event) {
	if err := p.NotifyObservers(ctx, e); err != nil {
		slog.Error("observer failed to handle event", "event", fmt.Sprintf("%T", e), "error", err)
	}
}

// stage runs a single transformation, recording its timing and raising a StageCompleted event
func stage[T any](ctx context.Context, p *Pipeline, name string, f func() (*dataset.Dataset[T], error)) (*dataset.Dataset[T], error) {
	executionId, _ := context_values.ExecutionIdFromContext(ctx)
	start := time.Now()
	done := p.result.Timing.Track(name)
	res, err := f()
	done()
	if err != nil {
		slog.Error("stage failed", "stage", name, "error", err)
		return nil, err
	}
	rows := res.Count()
	slog.Debug("stage complete", "stage", name, "rows", rows, "partitions", res.NumPartitions())
	p.notify(ctx, events.NewStageCompletedEvent(executionId, name, rows, time.Since(start)))
	return res, nil
}

func writeTable[T tables.Row](ctx context.Context, p *Pipeline, name string, d *dataset.Dataset[T]) error {
	if err := p.ensureStorage(ctx); err != nil {
		return err
	}
	table, ok := tables.ByName(name)
	if !ok {
		return types.NewWriteError(name, "", fmt.Errorf("unknown table"))
	}
	executionId, _ := context_values.ExecutionIdFromContext(ctx)
	tw := table_writer.NewTableWriter(p.dest, p.outputFormat, p.cfg.PartitionBy())

	done := p.result.Timing.Track("write_" + name)
	res, err := table_writer.WriteTable(ctx, tw, table, d)
	done()
	if res != nil {
		p.result.addTable(res)
	}
	if err != nil {
		return err
	}
	p.notify(ctx, events.NewTableWrittenEvent(executionId, name, res.Rows, res.Files, res.Duration))
	return nil
}
