package types

// RowData is a single line of data extracted from an artifact by a loader,
// along with the position it was read from
type RowData struct {
	Data     string
	Artifact *ArtifactInfo
	// 1-based line number within the artifact
	Line int
}
