package id_generator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerators_Unique(t *testing.T) {
	snowflakeGen, err := NewSnowflake(1)
	require.NoError(t, err)

	tests := []struct {
		name string
		gen  Generator
	}{
		{name: "counter", gen: NewCounter()},
		{name: "partition", gen: NewPartitionAware()},
		{name: "snowflake", gen: snowflakeGen},
	}
	const partitions = 8
	const rows = 500
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([][]int64, partitions)
			var wg sync.WaitGroup
			for p := 0; p < partitions; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for i := 0; i < rows; i++ {
						ids[p] = append(ids[p], tt.gen.Next(p, i))
					}
				}(p)
			}
			wg.Wait()

			seen := make(map[int64]struct{})
			for _, partitionIds := range ids {
				for _, id := range partitionIds {
					_, dup := seen[id]
					assert.False(t, dup, "duplicate id %d", id)
					seen[id] = struct{}{}
				}
			}
			assert.Len(t, seen, partitions*rows)
		})
	}
}

func TestCounter_Deterministic(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, int64(0), c.Next(3, 9))
	assert.Equal(t, int64(1), c.Next(0, 0))
	assert.Equal(t, int64(2), c.Next(0, 1))
}

func TestPartitionAware_Next(t *testing.T) {
	g := NewPartitionAware()
	assert.Equal(t, int64(5), g.Next(0, 5))
	assert.Equal(t, int64(8589934592), g.Next(1, 0))
	assert.Equal(t, int64(2*8589934592+7), g.Next(2, 7))
}

func TestNew(t *testing.T) {
	tests := []struct {
		identifier string
		want       string
		wantErr    bool
	}{
		{identifier: "", want: CounterIdentifier},
		{identifier: "counter", want: CounterIdentifier},
		{identifier: "partition", want: PartitionAwareIdentifier},
		{identifier: "snowflake", want: SnowflakeIdentifier},
		{identifier: "uuid", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			g, err := New(tt.identifier, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Identifier())
		})
	}

	_, err := New(SnowflakeIdentifier, 5000)
	assert.Error(t, err)
}
