package artifact_source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/types"
)

const AwsS3BucketSourceIdentifier = "aws_s3_bucket"

// AwsS3BucketSource is a [Source] implementation that reads artifacts from an S3 bucket
type AwsS3BucketSource struct {
	Bucket string
	// key prefix of the input root, without trailing slash
	Prefix string
	TmpDir string

	client *s3.Client
}

func NewAwsS3BucketSource(ctx context.Context, root types.Location, conn *connection.AwsConnection) (*AwsS3BucketSource, error) {
	if root.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if conn == nil {
		conn = &connection.AwsConnection{}
	}

	client, err := conn.S3Client(ctx)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", fmt.Sprintf("songplay-etl-s3-%s-", root.Bucket))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	slog.Info("Initialized AwsS3BucketSource", "bucket", root.Bucket, "prefix", root.Path)
	return &AwsS3BucketSource{
		Bucket: root.Bucket,
		Prefix: root.Path,
		TmpDir: tmpDir,
		client: client,
	}, nil
}

func (s *AwsS3BucketSource) Identifier() string {
	return AwsS3BucketSourceIdentifier
}

func (s *AwsS3BucketSource) Close() error {
	// delete the temp dir and all files
	return os.RemoveAll(s.TmpDir)
}

func (s *AwsS3BucketSource) DiscoverArtifacts(ctx context.Context, pattern *Pattern) ([]*types.ArtifactInfo, error) {
	listPrefix := joinKey(s.Prefix, pattern.Prefix())
	if listPrefix != "" {
		listPrefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.Bucket,
		Prefix: &listPrefix,
	})

	var res []*types.ArtifactInfo
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get page of S3 objects, %w", err)
		}
		for _, object := range output.Contents {
			key := aws.ToString(object.Key)
			rel := relativeKey(s.Prefix, key)
			if rel == "" || strings.HasSuffix(key, "/") || !pattern.Match(rel) {
				continue
			}

			info := types.NewArtifactInfo(rel,
				types.WithOriginalName(fmt.Sprintf("s3://%s/%s", s.Bucket, key)),
				types.WithSource(AwsS3BucketSourceIdentifier, s.Bucket),
				types.WithSize(aws.ToInt64(object.Size)))
			res = append(res, info)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *AwsS3BucketSource) DownloadArtifact(ctx context.Context, info *types.ArtifactInfo) (*types.ArtifactInfo, error) {
	key := joinKey(s.Prefix, info.Name)

	// Get the object from S3
	getObjectOutput, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.Bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact, %w", err)
	}
	defer getObjectOutput.Body.Close()

	localFilePath, err := localPath(s.TmpDir, info.Name)
	if err != nil {
		return nil, err
	}
	if err := writeLocalFile(localFilePath, getObjectOutput.Body); err != nil {
		return nil, err
	}
	return info.Downloaded(localFilePath), nil
}

func joinKey(elem ...string) string {
	var parts []string
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return path.Join(parts...)
}

func relativeKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, prefix+"/")
}

// localPath returns the download path for an artifact name, which must stay inside tmpDir
func localPath(tmpDir, name string) (string, error) {
	res := filepath.Join(tmpDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(tmpDir, res)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact name '%s' resolves outside the download directory", name)
	}
	return res, nil
}

// writeLocalFile copies the reader to a local file, creating parent directories as required
func writeLocalFile(localFilePath string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(localFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for file, %w", err)
	}

	outFile, err := os.Create(localFilePath)
	if err != nil {
		return fmt.Errorf("failed to create file, %w", err)
	}
	defer func() {
		if closeErr := outFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file, %w", closeErr)
		}
	}()

	if _, err := io.Copy(outFile, r); err != nil {
		return fmt.Errorf("failed to write data to file, %w", err)
	}
	return nil
}
