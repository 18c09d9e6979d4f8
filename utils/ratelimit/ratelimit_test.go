package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, failOpen bool) (*TokenBucketLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenBucketLimiter(client, zap.NewNop(), failOpen), mr
}

func TestAllowWithinLimit(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, false)

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "p1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := l.Allow(ctx, "p1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, false)

	allowed, err := l.Allow(ctx, "p1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(ctx, "p2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailOpenOnRedisOutage(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, true)
	mr.Close()

	allowed, err := l.Allow(ctx, "p1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFailClosedOnRedisOutage(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, false)
	mr.Close()

	allowed, err := l.Allow(ctx, "p1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}
