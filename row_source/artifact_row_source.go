package row_source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/turbot/songplay-etl/artifact_loader"
	"github.com/turbot/songplay-etl/artifact_source"
	"github.com/turbot/songplay-etl/context_values"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/events"
	"github.com/turbot/songplay-etl/observable"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/types"
)

const defaultMaxConcurrentDownloads = 16

// ArtifactRowSource reads JSON records from the artifacts of a [artifact_source.Source]
//
// Artifacts matching a pattern are discovered, downloaded (under the download rate limiter) and loaded
// with the [artifact_loader.Loader] for their file type. Each JSON value is decoded into a [types.Record].
// Reading is fail-fast: the first unreadable artifact or unparsable value fails the whole read.
//
// The resulting dataset has one partition per artifact, in artifact name order
type ArtifactRowSource struct {
	observable.ObservableImpl

	Source   artifact_source.Source
	executor dataset.Executor
	limiter  *rate_limiter.APILimiter
}

func NewArtifactRowSource(source artifact_source.Source, opts ...ArtifactRowSourceOption) *ArtifactRowSource {
	a := &ArtifactRowSource{
		Source:   source,
		executor: dataset.SerialExecutor{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.limiter == nil {
		a.limiter = rate_limiter.NewAPILimiter(&rate_limiter.Definition{
			Name:           "artifact_download_limiter",
			MaxConcurrency: defaultMaxConcurrentDownloads,
		})
	}
	return a
}

// Read returns a dataset of all records in the artifacts matching the pattern.
// name identifies the dataset in events and errors
func (a *ArtifactRowSource) Read(ctx context.Context, name string, pattern *artifact_source.Pattern) (*dataset.Dataset[types.Record], error) {
	executionId, _ := context_values.ExecutionIdFromContext(ctx)
	location := fmt.Sprintf("%s:%s", a.Source.Identifier(), pattern.String())

	infos, err := a.Source.DiscoverArtifacts(ctx, pattern)
	if err != nil {
		return nil, types.NewReadError(location, err)
	}
	if len(infos) == 0 {
		return nil, types.NewReadError(location, types.ErrNoArtifacts)
	}
	slog.Info("ArtifactRowSource discovered artifacts", "dataset", name, "pattern", pattern.String(), "count", len(infos))
	a.notify(ctx, events.NewArtifactsDiscoveredEvent(executionId, name, len(infos)))

	partitions := make([][]types.Record, len(infos))
	err = a.executor.Run(ctx, len(infos), func(ctx context.Context, p int) error {
		local, err := a.download(ctx, infos[p])
		if err != nil {
			return types.NewReadError(infos[p].OriginalName, err)
		}

		records, err := a.extractArtifact(ctx, local)
		if err != nil {
			return err
		}
		partitions[p] = records
		a.notify(ctx, events.NewArtifactLoadedEvent(executionId, local, len(records)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dataset.FromPartitions(a.executor, partitions...), nil
}

func (a *ArtifactRowSource) download(ctx context.Context, info *types.ArtifactInfo) (*types.ArtifactInfo, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	defer a.limiter.Release()

	slog.Debug("ArtifactRowSource downloading artifact", "artifact", info.OriginalName)
	return a.Source.DownloadArtifact(ctx, info)
}

// extractArtifact loads the local copy of the artifact and decodes every JSON value
func (a *ArtifactRowSource) extractArtifact(ctx context.Context, info *types.ArtifactInfo) ([]types.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loader := artifact_loader.ForArtifact(info)
	dataChan := make(chan *types.RowData, 64)
	loadErrChan := make(chan error, 1)
	go func() {
		loadErrChan <- loader.Load(ctx, info, dataChan)
	}()

	decoder := newRecordDecoder(info.OriginalName)
	var records []types.Record
	var decodeErr error
	for row := range dataChan {
		if decodeErr != nil {
			// drain until the loader sees the cancellation
			continue
		}
		decoded, err := decoder.add(row)
		if err != nil {
			decodeErr = err
			cancel()
			continue
		}
		records = append(records, decoded...)
	}

	loadErr := <-loadErrChan
	if decodeErr != nil {
		return nil, decodeErr
	}
	if loadErr != nil {
		return nil, types.NewReadError(info.OriginalName, loadErr)
	}
	if err := decoder.finish(); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *ArtifactRowSource) notify(ctx context.Context, e events.Event) {
	if err := a.NotifyObservers(ctx, e); err != nil {
		slog.Error("Error notifying observers", "event", fmt.Sprintf("%T", e), "error", err)
	}
}
