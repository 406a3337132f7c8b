package destination

import (
	"context"
	"io"
)

// Destination is the output root that tables are written under
// Destinations provided: [LocalDestination], [S3Destination], [GcsDestination]
type Destination interface {
	Identifier() string
	// Location returns the display form of the file at the relative path
	Location(relPath string) string
	// Create returns a writer for the file at the slash separated relative path, replacing any existing file.
	// The file is complete once Close returns without error
	Create(ctx context.Context, relPath string) (io.WriteCloser, error)
	Close() error
}
