package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewCounter(t *testing.T) ViewCounter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisViewCounter(client)
}

func TestViewCounter(t *testing.T) {
	ctx := context.Background()
	vc := newTestViewCounter(t)

	n, err := vc.Get(ctx, "listing-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := int64(1); i <= 3; i++ {
		n, err = vc.Increment(ctx, "listing-1")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err = vc.Get(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Counts are independent per listing.
	n, err = vc.Get(ctx, "listing-2")
	require.NoError(t, err)
	assert.Zero(t, n)
}
