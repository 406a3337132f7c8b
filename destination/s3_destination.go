package destination

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/types"
)

const S3DestinationIdentifier = "aws_s3_bucket"

// S3Destination writes files to an S3 bucket. Each file is buffered in memory and uploaded on Close
type S3Destination struct {
	Bucket string
	Prefix string

	client  *s3.Client
	limiter *rate_limiter.APILimiter
}

func NewS3Destination(ctx context.Context, root types.Location, conn *connection.AwsConnection, limiter *rate_limiter.APILimiter) (*S3Destination, error) {
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
	slog.Info("Initialized S3Destination", "bucket", root.Bucket, "prefix", root.Path)
	return &S3Destination{
		Bucket:  root.Bucket,
		Prefix:  root.Path,
		client:  client,
		limiter: limiter,
	}, nil
}

func (d *S3Destination) Identifier() string {
	return S3DestinationIdentifier
}

func (d *S3Destination) key(relPath string) string {
	return strings.TrimPrefix(path.Join(d.Prefix, relPath), "/")
}

func (d *S3Destination) Location(relPath string) string {
	return fmt.Sprintf("s3://%s/%s", d.Bucket, d.key(relPath))
}

func (d *S3Destination) Create(ctx context.Context, relPath string) (io.WriteCloser, error) {
	return &s3ObjectWriter{ctx: ctx, dest: d, key: d.key(relPath)}, nil
}

func (d *S3Destination) Close() error {
	return nil
}

type s3ObjectWriter struct {
	ctx  context.Context
	dest *S3Destination
	key  string
	buf  bytes.Buffer
}

func (w *s3ObjectWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3ObjectWriter) Close() error {
	put := func() error {
		_, err := w.dest.client.PutObject(w.ctx, &s3.PutObjectInput{
			Bucket:        &w.dest.Bucket,
			Key:           &w.key,
			Body:          bytes.NewReader(w.buf.Bytes()),
			ContentLength: aws.Int64(int64(w.buf.Len())),
		})
		if err != nil {
			return fmt.Errorf("failed to upload object, %w", err)
		}
		return nil
	}
	if w.dest.limiter == nil {
		return put()
	}
	return w.dest.limiter.Do(w.ctx, put)
}
