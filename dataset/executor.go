package dataset

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Executor evaluates a per-partition function over every partition of a dataset
type Executor interface {
	// Run invokes fn once for each partition in [0, partitions), returning the first error
	Run(ctx context.Context, partitions int, fn func(ctx context.Context, partition int) error) error
}

// SerialExecutor evaluates partitions one at a time, in order
type SerialExecutor struct{}

func (SerialExecutor) Run(ctx context.Context, partitions int, fn func(context.Context, int) error) error {
	for p := 0; p < partitions; p++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// ParallelExecutor evaluates up to Parallelism partitions concurrently.
// The first error cancels the context passed to the remaining partitions
type ParallelExecutor struct {
	Parallelism int
}

func NewParallelExecutor(parallelism int) *ParallelExecutor {
	return &ParallelExecutor{Parallelism: parallelism}
}

func (e *ParallelExecutor) Run(ctx context.Context, partitions int, fn func(context.Context, int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.Parallelism > 0 {
		g.SetLimit(e.Parallelism)
	}
	for p := 0; p < partitions; p++ {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, p)
		})
	}
	return g.Wait()
}
