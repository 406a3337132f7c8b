package row_source

import (
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/rate_limiter"
)

type ArtifactRowSourceOption func(*ArtifactRowSource)

// WithExecutor sets the executor used to load artifacts, and which the resulting dataset is bound to
func WithExecutor(executor dataset.Executor) ArtifactRowSourceOption {
	return func(a *ArtifactRowSource) {
		a.executor = executor
	}
}

// WithDownloadLimiter sets the limiter applied to artifact downloads
func WithDownloadLimiter(limiter *rate_limiter.APILimiter) ArtifactRowSourceOption {
	return func(a *ArtifactRowSource) {
		a.limiter = limiter
	}
}
