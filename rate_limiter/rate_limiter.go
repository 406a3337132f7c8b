package rate_limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// APILimiter limits both the rate and the concurrency of requests to a storage backend
type APILimiter struct {
	Name string

	// underlying rate limiter
	limiter *rate.Limiter
	// semaphore to control concurrency
	sem        *semaphore.Weighted
	definition Definition
}

func NewAPILimiter(l *Definition) *APILimiter {
	res := &APILimiter{
		Name:       l.Name,
		definition: *l,
	}
	if l.FillRate > 0 {
		res.limiter = rate.NewLimiter(l.FillRate, int(l.BucketSize))
	}
	if l.MaxConcurrency > 0 {
		res.sem = semaphore.NewWeighted(l.MaxConcurrency)
	}
	return res
}

func (l *APILimiter) String() string {
	return l.Name + " " + l.definition.String()
}

// Wait blocks until a concurrency slot and a rate token are available.
// Every successful Wait must be followed by a Release
func (l *APILimiter) Wait(ctx context.Context) error {
	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			l.Release()
			return err
		}
	}
	return nil
}

func (l *APILimiter) TryToAcquireSemaphore() bool {
	if l.sem == nil {
		return true
	}
	return l.sem.TryAcquire(1)
}

func (l *APILimiter) Release() {
	if l.sem == nil {
		return
	}
	l.sem.Release(1)
}

// Do runs fn once the limiter allows
func (l *APILimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
