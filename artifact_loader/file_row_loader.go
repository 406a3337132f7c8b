package artifact_loader

import (
	"context"
	"fmt"
	"os"

	"github.com/turbot/songplay-etl/types"
)

const FileRowLoaderIdentifier = "file_row_loader"

// FileRowLoader is an Loader that can loads a file from a path and extracts the contents a line at a time
type FileRowLoader struct {
}

func NewFileRowLoader() Loader {
	return &FileRowLoader{}
}

func (g FileRowLoader) Identifier() string {
	return FileRowLoaderIdentifier
}

// Load implements Loader
func (g FileRowLoader) Load(ctx context.Context, info *types.ArtifactInfo, dataChan chan<- *types.RowData) error {
	defer close(dataChan)

	inputPath := info.LocalName
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", inputPath, err)
	}
	defer f.Close()

	return scanLines(ctx, f, info, dataChan)
}
