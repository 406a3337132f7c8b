package artifact_loader

import (
	"context"

	"github.com/turbot/songplay-etl/types"
)

// Loader is an interface which provides a method for loading a locally saved artifact
// Loaders provided: [FileRowLoader], [GzipRowLoader]
type Loader interface {
	Identifier() string
	// Load reads the locally saved artifact, performing any necessary decompression, and sends
	// each non-blank line to dataChan. dataChan is closed when Load returns
	Load(context.Context, *types.ArtifactInfo, chan<- *types.RowData) error
}
