package artifact_loader

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"

	"github.com/turbot/songplay-etl/types"
)

const GzipRowLoaderIdentifier = "gzip_row_loader"

// GzipRowLoader is an Loader that extracts lines from a gzip file
type GzipRowLoader struct {
}

func NewGzipRowLoader() Loader {
	return &GzipRowLoader{}
}

func (g GzipRowLoader) Identifier() string {
	return GzipRowLoaderIdentifier
}

// Load implements Loader
func (g GzipRowLoader) Load(ctx context.Context, info *types.ArtifactInfo, dataChan chan<- *types.RowData) error {
	defer close(dataChan)

	inputPath := info.LocalName
	gzFile, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", inputPath, err)
	}
	defer gzFile.Close()

	gzReader, err := gzip.NewReader(gzFile)
	if err != nil {
		return fmt.Errorf("error creating gzip reader for %s: %w", inputPath, err)
	}
	defer gzReader.Close()

	return scanLines(ctx, gzReader, info, dataChan)
}
