package artifact_loader

import "github.com/turbot/songplay-etl/types"

// ForArtifact returns the loader for the artifact, based on its extension
func ForArtifact(info *types.ArtifactInfo) Loader {
	if info.IsGzip() {
		return NewGzipRowLoader()
	}
	return NewFileRowLoader()
}
