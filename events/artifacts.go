package events

import "github.com/turbot/songplay-etl/types"

// ArtifactsDiscovered is raised once discovery of the artifacts of a dataset is complete
type ArtifactsDiscovered struct {
	Base
	ExecutionId string
	Dataset     string
	Count       int
}

func NewArtifactsDiscoveredEvent(executionId, dataset string, count int) *ArtifactsDiscovered {
	return &ArtifactsDiscovered{
		ExecutionId: executionId,
		Dataset:     dataset,
		Count:       count,
	}
}

// ArtifactLoaded is raised when all records of an artifact have been read
type ArtifactLoaded struct {
	Base
	ExecutionId string
	Info        *types.ArtifactInfo
	RecordCount int
}

func NewArtifactLoadedEvent(executionId string, info *types.ArtifactInfo, recordCount int) *ArtifactLoaded {
	return &ArtifactLoaded{
		ExecutionId: executionId,
		Info:        info,
		RecordCount: recordCount,
	}
}
