package destination

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/types"
)

const GcsDestinationIdentifier = "gcp_storage_bucket"

// GcsDestination writes files to a GCP Storage bucket
type GcsDestination struct {
	Bucket string
	Prefix string

	client  *storage.Client
	limiter *rate_limiter.APILimiter
}

func NewGcsDestination(ctx context.Context, root types.Location, conn *connection.GcpConnection, limiter *rate_limiter.APILimiter) (*GcsDestination, error) {
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
	slog.Info("Initialized GcsDestination", "bucket", root.Bucket, "prefix", root.Path)
	return &GcsDestination{Bucket: root.Bucket, Prefix: root.Path, client: client, limiter: limiter}, nil
}

func (d *GcsDestination) Identifier() string {
	return GcsDestinationIdentifier
}

func (d *GcsDestination) object(relPath string) string {
	return strings.TrimPrefix(path.Join(d.Prefix, relPath), "/")
}

func (d *GcsDestination) Location(relPath string) string {
	return fmt.Sprintf("gs://%s/%s", d.Bucket, d.object(relPath))
}

// Create implements [Destination]
// the object is written when the returned writer is closed.
// The upload holds a limiter slot from Create until Close
func (d *GcsDestination) Create(ctx context.Context, relPath string) (io.WriteCloser, error) {
	return newLimitedWriter(ctx, d.limiter, func() io.WriteCloser {
		return d.client.Bucket(d.Bucket).Object(d.object(relPath)).NewWriter(ctx)
	})
}

func (d *GcsDestination) Close() error {
	return d.client.Close()
}

// limitedWriter releases its limiter slot when closed
type limitedWriter struct {
	io.WriteCloser
	limiter *rate_limiter.APILimiter
	closed  bool
}

func newLimitedWriter(ctx context.Context, limiter *rate_limiter.APILimiter, open func() io.WriteCloser) (io.WriteCloser, error) {
	if limiter == nil {
		return open(), nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire upload slot, %w", err)
	}
	return &limitedWriter{WriteCloser: open(), limiter: limiter}, nil
}

func (w *limitedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.limiter.Release()
	return w.WriteCloser.Close()
}
