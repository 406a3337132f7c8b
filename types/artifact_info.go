package types

import (
	"path"
	"strings"
)

// ArtifactInfo describes a single input file discovered by a source
type ArtifactInfo struct {
	// Name is the path of the artifact relative to the source (the object key for buckets)
	Name string `json:"name"`
	// OriginalName is the full location the artifact was discovered at, e.g. s3://bucket/key
	OriginalName string `json:"original_name"`
	// the identifier of the source which discovered the artifact
	SourceType string `json:"source_type"`
	// the bucket or root directory
	SourceName string `json:"source_name"`
	Size       int64  `json:"size,omitempty"`
	// LocalName is the path of the local copy of the artifact, set once it has been downloaded
	LocalName string `json:"local_name,omitempty"`
}

func NewArtifactInfo(name string, opts ...ArtifactInfoOpts) *ArtifactInfo {
	res := &ArtifactInfo{
		Name:         name,
		OriginalName: name,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Downloaded returns a copy of the info with the local path set
func (i *ArtifactInfo) Downloaded(localName string) *ArtifactInfo {
	res := *i
	res.LocalName = localName
	return &res
}

// IsGzip returns whether the artifact is gzip compressed, based on its extension
func (i *ArtifactInfo) IsGzip() bool {
	return strings.EqualFold(path.Ext(i.Name), ".gz")
}
