package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TokenBucketLimiter implements rate limiting with redis INCR/EXPIRE so the
// decision is consistent across instances.
type TokenBucketLimiter struct {
	client   *redis.Client
	logger   *zap.Logger
	failOpen bool // allow requests when redis is unavailable
}

// NewTokenBucketLimiter creates a limiter. With failOpen set, redis outages
// let requests through instead of rejecting everything.
func NewTokenBucketLimiter(client *redis.Client, logger *zap.Logger, failOpen bool) *TokenBucketLimiter {
	return &TokenBucketLimiter{client: client, logger: logger, failOpen: failOpen}
}

// Allow consumes one token from the bucket for key.
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		if l.failOpen {
			l.logger.Warn("rate limit check failed, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := incrCmd.Val() <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", incrCmd.Val()),
			zap.Int("limit", limit),
		)
	}
	return allowed, nil
}

// bucketKey buckets time into fixed windows.
func (l *TokenBucketLimiter) bucketKey(key string, now time.Time, window time.Duration) string {
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}
