package artifact_source

import (
	"context"
	"fmt"

	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/types"
)

// NewSource returns the [Source] for the scheme of the given root location
func NewSource(ctx context.Context, root types.Location, conns connection.Connections) (Source, error) {
	switch root.Scheme {
	case types.SchemeFile, "":
		return NewFileSystemSource(root.Path), nil
	case types.SchemeS3:
		return NewAwsS3BucketSource(ctx, root, conns.Aws)
	case types.SchemeGcs:
		return NewGcpStorageBucketSource(ctx, root, conns.Gcp)
	default:
		return nil, fmt.Errorf("no source registered for scheme '%s'", root.Scheme)
	}
}
