package rate_limiter

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// Definition configures an APILimiter. A zero FillRate means no rate limit,
// a zero MaxConcurrency means no concurrency limit
type Definition struct {
	// the limiter name
	Name string
	// requests per second and burst
	FillRate   rate.Limit
	BucketSize int64
	// the max concurrency supported
	MaxConcurrency int64
}

func (d *Definition) String() string {
	var parts []string
	if d.FillRate > 0 {
		parts = append(parts, fmt.Sprintf("Limit(/s): %v, Burst: %d", d.FillRate, d.BucketSize))
	}
	if d.MaxConcurrency > 0 {
		parts = append(parts, fmt.Sprintf("MaxConcurrency: %d", d.MaxConcurrency))
	}
	if len(parts) == 0 {
		return "unlimited"
	}
	return strings.Join(parts, " ")
}

func (d *Definition) Validate() error {
	var validationErrors []error
	if d.Name == "" {
		validationErrors = append(validationErrors, errors.New("rate limiter definition must specify a name"))
	}
	if d.FillRate < 0 {
		validationErrors = append(validationErrors, errors.New("fill_rate must not be negative"))
	}
	if d.FillRate > 0 && d.BucketSize < 1 {
		validationErrors = append(validationErrors, errors.New("bucket_size must be at least 1 when fill_rate is set"))
	}
	if d.MaxConcurrency < 0 {
		validationErrors = append(validationErrors, errors.New("max_concurrency must not be negative"))
	}
	return errors.Join(validationErrors...)
}
