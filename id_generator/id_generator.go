// Package id_generator provides the surrogate key generators used for Time.id and Songplay.songplay_id.
// Ids are unique within a run, they are not stable or gap-free across runs.
package id_generator

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

const (
	CounterIdentifier        = "counter"
	PartitionAwareIdentifier = "partition"
	SnowflakeIdentifier      = "snowflake"
)

// Generator returns a new surrogate id for the row at the given index of the given partition
// Implementations must be safe for concurrent use across partitions
type Generator interface {
	Identifier() string
	Next(partition, index int) int64
}

// Counter generates monotonically increasing ids starting at 0, ignoring row position
type Counter struct {
	next atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Identifier() string {
	return CounterIdentifier
}

func (c *Counter) Next(int, int) int64 {
	return c.next.Add(1) - 1
}

// the row index occupies the lower 33 bits, the partition the upper bits
const partitionShift = 33

// PartitionAware generates ids from the row position, partition<<33 + index.
// Ids are increasing within a partition and unique as long as no partition holds more than 2^33 rows
type PartitionAware struct{}

func NewPartitionAware() PartitionAware {
	return PartitionAware{}
}

func (PartitionAware) Identifier() string {
	return PartitionAwareIdentifier
}

func (PartitionAware) Next(partition, index int) int64 {
	return int64(partition)<<partitionShift + int64(index)
}

// Snowflake generates time ordered ids using a snowflake node
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", node, err)
	}
	return &Snowflake{node: n}, nil
}

func (s *Snowflake) Identifier() string {
	return SnowflakeIdentifier
}

func (s *Snowflake) Next(int, int) int64 {
	return s.node.Generate().Int64()
}

// New returns the generator with the given identifier
func New(identifier string, snowflakeNode int64) (Generator, error) {
	switch identifier {
	case CounterIdentifier, "":
		return NewCounter(), nil
	case PartitionAwareIdentifier:
		return NewPartitionAware(), nil
	case SnowflakeIdentifier:
		return NewSnowflake(snowflakeNode)
	}
	return nil, fmt.Errorf("invalid id generator '%s', must be one of: %s, %s, %s", identifier, CounterIdentifier, PartitionAwareIdentifier, SnowflakeIdentifier)
}
