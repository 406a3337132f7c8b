package artifact_source

import (
	"context"

	"github.com/turbot/songplay-etl/types"
)

// Source is an interface providing methods for discovering and downloading artifacts to the local file system.
// Sources provided: [FileSystemSource], [AwsS3BucketSource], [GcpStorageBucketSource]
type Source interface {
	Identifier() string

	// DiscoverArtifacts returns the artifacts under the source root whose relative path matches the pattern,
	// ordered by name
	DiscoverArtifacts(ctx context.Context, pattern *Pattern) ([]*types.ArtifactInfo, error)

	// DownloadArtifact ensures the artifact is available on the local file system,
	// returning a copy of the info with LocalName populated
	DownloadArtifact(context.Context, *types.ArtifactInfo) (*types.ArtifactInfo, error)

	Close() error
}
