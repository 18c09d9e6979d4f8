package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*InviteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewInviteCache(client, time.Hour), mr
}

func TestInviteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	_, ok, err := c.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a1b2c3d4", "server-1"))

	serverID, ok, err := c.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "server-1", serverID)
}

func TestInviteCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "a1b2c3d4", "server-1"))
	require.NoError(t, c.Invalidate(ctx, "a1b2c3d4"))

	_, ok, err := c.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInviteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "a1b2c3d4", "server-1"))
	mr.FastForward(2 * time.Hour)

	_, ok, err := c.Get(ctx, "a1b2c3d4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInviteCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(ctx, "a1b2c3d4")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "a1b2c3d4", "server-1"))
}
