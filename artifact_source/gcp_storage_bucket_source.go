package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/types"
	"google.golang.org/api/iterator"
)

const GcpStorageBucketSourceIdentifier = "gcp_storage_bucket"

// GcpStorageBucketSource is a [Source] implementation that reads artifacts from a GCP Storage bucket
type GcpStorageBucketSource struct {
	Bucket string
	Prefix string
	TmpDir string

	client *storage.Client
}

func NewGcpStorageBucketSource(ctx context.Context, root types.Location, conn *connection.GcpConnection) (*GcpStorageBucketSource, error) {
	if root.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if conn == nil {
		conn = &connection.GcpConnection{}
	}

	client, err := conn.StorageClient(ctx)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", fmt.Sprintf("songplay-etl-gcs-%s-", root.Bucket))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	slog.Info("Initialized GcpStorageBucketSource", "bucket", root.Bucket, "prefix", root.Path)
	return &GcpStorageBucketSource{
		Bucket: root.Bucket,
		Prefix: root.Path,
		TmpDir: tmpDir,
		client: client,
	}, nil
}

func (s *GcpStorageBucketSource) Identifier() string {
	return GcpStorageBucketSourceIdentifier
}

func (s *GcpStorageBucketSource) Close() error {
	return errors.Join(s.client.Close(), os.RemoveAll(s.TmpDir))
}

func (s *GcpStorageBucketSource) DiscoverArtifacts(ctx context.Context, pattern *Pattern) ([]*types.ArtifactInfo, error) {
	listPrefix := joinKey(s.Prefix, pattern.Prefix())
	if listPrefix != "" {
		listPrefix += "/"
	}

	bucket := s.client.Bucket(s.Bucket)
	objectIterator := bucket.Objects(ctx, &storage.Query{Prefix: listPrefix})

	var res []*types.ArtifactInfo
	for {
		obj, err := objectIterator.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("failed to list objects in bucket: %w", err)
		}
		rel := relativeKey(s.Prefix, obj.Name)
		if rel == "" || strings.HasSuffix(obj.Name, "/") || !pattern.Match(rel) {
			continue
		}
		info := types.NewArtifactInfo(rel,
			types.WithOriginalName(fmt.Sprintf("gs://%s/%s", s.Bucket, obj.Name)),
			types.WithSource(GcpStorageBucketSourceIdentifier, s.Bucket),
			types.WithSize(obj.Size))
		res = append(res, info)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *GcpStorageBucketSource) DownloadArtifact(ctx context.Context, info *types.ArtifactInfo) (*types.ArtifactInfo, error) {
	obj := s.client.Bucket(s.Bucket).Object(joinKey(s.Prefix, info.Name))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get object reader: %w", err)
	}
	defer reader.Close()

	localFilePath, err := localPath(s.TmpDir, info.Name)
	if err != nil {
		return nil, err
	}
	if err := writeLocalFile(localFilePath, reader); err != nil {
		return nil, err
	}
	return info.Downloaded(localFilePath), nil
}
