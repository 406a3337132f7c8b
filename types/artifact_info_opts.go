package types

type ArtifactInfoOpts func(*ArtifactInfo)

func WithSource(sourceType, sourceName string) ArtifactInfoOpts {
	return func(i *ArtifactInfo) {
		i.SourceType = sourceType
		i.SourceName = sourceName
	}
}

func WithOriginalName(originalName string) ArtifactInfoOpts {
	return func(i *ArtifactInfo) {
		i.OriginalName = originalName
	}
}

func WithSize(size int64) ArtifactInfoOpts {
	return func(i *ArtifactInfo) {
		i.Size = size
	}
}
