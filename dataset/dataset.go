// Package dataset provides an immutable, partitioned collection and the map/filter/join
// operations used to express the pipeline stages. Evaluation of each operation is delegated
// to an [Executor], so the same stage graph runs serially or in parallel.
package dataset

import "context"

type Dataset[T any] struct {
	partitions [][]T
	executor   Executor
}

// FromPartitions creates a dataset from the given partitions. The partitions are not copied
// and must not be modified afterwards
func FromPartitions[T any](executor Executor, partitions ...[]T) *Dataset[T] {
	if executor == nil {
		executor = SerialExecutor{}
	}
	return &Dataset[T]{partitions: partitions, executor: executor}
}

// FromSlice creates a single partition dataset
func FromSlice[T any](executor Executor, items []T) *Dataset[T] {
	return FromPartitions(executor, items)
}

func (d *Dataset[T]) Executor() Executor {
	return d.executor
}

func (d *Dataset[T]) NumPartitions() int {
	return len(d.partitions)
}

// Partition returns the items of partition p
func (d *Dataset[T]) Partition(p int) []T {
	return d.partitions[p]
}

func (d *Dataset[T]) Count() int {
	count := 0
	for _, p := range d.partitions {
		count += len(p)
	}
	return count
}

// Collect returns all items, partition by partition
func (d *Dataset[T]) Collect() []T {
	res := make([]T, 0, d.Count())
	for _, p := range d.partitions {
		res = append(res, p...)
	}
	return res
}

// Map applies f to every item
func Map[T, U any](ctx context.Context, d *Dataset[T], f func(T) (U, error)) (*Dataset[U], error) {
	return MapWithIndex(ctx, d, func(_ int, _ int, item T) (U, error) {
		return f(item)
	})
}

// MapWithIndex applies f to every item, passing the partition number and the index of the item within it
func MapWithIndex[T, U any](ctx context.Context, d *Dataset[T], f func(partition, index int, item T) (U, error)) (*Dataset[U], error) {
	out := make([][]U, len(d.partitions))
	err := d.executor.Run(ctx, len(d.partitions), func(ctx context.Context, p int) error {
		in := d.partitions[p]
		res := make([]U, len(in))
		for i, item := range in {
			u, err := f(p, i, item)
			if err != nil {
				return err
			}
			res[i] = u
		}
		out[p] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromPartitions(d.executor, out...), nil
}

// Filter returns the items for which keep returns true
func Filter[T any](ctx context.Context, d *Dataset[T], keep func(T) bool) (*Dataset[T], error) {
	return FlatMap(ctx, d, func(item T) ([]T, error) {
		if keep(item) {
			return []T{item}, nil
		}
		return nil, nil
	})
}

// FlatMap applies f to every item and concatenates the results within each partition
func FlatMap[T, U any](ctx context.Context, d *Dataset[T], f func(T) ([]U, error)) (*Dataset[U], error) {
	out := make([][]U, len(d.partitions))
	err := d.executor.Run(ctx, len(d.partitions), func(ctx context.Context, p int) error {
		var res []U
		for _, item := range d.partitions[p] {
			u, err := f(item)
			if err != nil {
				return err
			}
			res = append(res, u...)
		}
		out[p] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromPartitions(d.executor, out...), nil
}
