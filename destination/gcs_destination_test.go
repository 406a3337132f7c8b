package destination

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/songplay-etl/rate_limiter"
)

type bufferCloser struct {
	bytes.Buffer
	closed int
}

func (b *bufferCloser) Close() error {
	b.closed++
	return nil
}

func TestLimitedWriter_HoldsSlotUntilClose(t *testing.T) {
	limiter := rate_limiter.NewAPILimiter(&rate_limiter.Definition{Name: "uploads", MaxConcurrency: 1})
	inner := &bufferCloser{}

	w, err := newLimitedWriter(context.Background(), limiter, func() io.WriteCloser { return inner })
	require.NoError(t, err)
	assert.False(t, limiter.TryToAcquireSemaphore(), "slot is held while the upload is open")

	_, err = w.Write([]byte("row"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, inner.closed)
	assert.Equal(t, "row", inner.String())

	require.True(t, limiter.TryToAcquireSemaphore(), "slot is released on close")
	limiter.Release()
}

func TestLimitedWriter_ContextCancelled(t *testing.T) {
	limiter := rate_limiter.NewAPILimiter(&rate_limiter.Definition{Name: "uploads", MaxConcurrency: 1})
	require.NoError(t, limiter.Wait(context.Background()))
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	opened := false
	_, err := newLimitedWriter(ctx, limiter, func() io.WriteCloser {
		opened = true
		return &bufferCloser{}
	})
	assert.Error(t, err)
	assert.False(t, opened)
}

func TestLimitedWriter_NoLimiter(t *testing.T) {
	inner := &bufferCloser{}
	w, err := newLimitedWriter(context.Background(), nil, func() io.WriteCloser { return inner })
	require.NoError(t, err)
	assert.Same(t, inner, w)
}
