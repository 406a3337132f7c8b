package destination

import (
	"context"
	"fmt"

	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/types"
)

// NewDestination returns the [Destination] for the scheme of the given root location.
// limiter, if set, is applied to uploads
func NewDestination(ctx context.Context, root types.Location, conns connection.Connections, limiter *rate_limiter.APILimiter) (Destination, error) {
	switch root.Scheme {
	case types.SchemeFile, "":
		return NewLocalDestination(root.Path)
	case types.SchemeS3:
		return NewS3Destination(ctx, root, conns.Aws, limiter)
	case types.SchemeGcs:
		return NewGcsDestination(ctx, root, conns.Gcp, limiter)
	default:
		return nil, fmt.Errorf("no destination registered for scheme '%s'", root.Scheme)
	}
}
