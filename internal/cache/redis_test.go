package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/matchengine/internal/cache"
	"github.com/bookbuddy/matchengine/internal/config"
)

func setupCache(t *testing.T) *cache.RedisCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg)
}

func TestRunLock(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	ok, err := c.AcquireRunLock(ctx, "2024-W07", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// second acquisition for the same period is refused
	ok, err = c.AcquireRunLock(ctx, "2024-W07", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// a different period has its own lock
	ok, err = c.AcquireRunLock(ctx, "2024-W08", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// releasing frees the period again
	require.NoError(t, c.ReleaseRunLock(ctx, "2024-W07"))
	ok, err = c.AcquireRunLock(ctx, "2024-W07", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPairingCount(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	// a miss is reported as such, not as a cached zero
	count, found, err := c.GetPairingCount(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(0), count)

	require.NoError(t, c.UpdatePairingCount(ctx, 42, 7))

	count, found, err = c.GetPairingCount(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), count)

	// a cached zero reads back as found
	require.NoError(t, c.UpdatePairingCount(ctx, 42, 0))
	count, found, err = c.GetPairingCount(ctx, 42)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(0), count)
}
