// Package cache holds the redis-backed invite-code lookup cache. The cache
// is strictly an accelerator: the database stays authoritative, and a rotated
// code is invalidated before the new one is written so a stale entry can
// never grant access.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// InviteCache maps invite codes to server IDs with a TTL.
type InviteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInviteCache creates an invite cache on top of an existing redis client.
func NewInviteCache(client *redis.Client, ttl time.Duration) *InviteCache {
	return &InviteCache{client: client, ttl: ttl}
}

func inviteKey(code string) string {
	return fmt.Sprintf("invite:%s", code)
}

// Get returns the cached server ID for code. The second result is false on a
// cache miss.
func (c *InviteCache) Get(ctx context.Context, code string) (string, bool, error) {
	serverID, err := c.client.Get(ctx, inviteKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("invite cache get: %w", err)
	}
	return serverID, true, nil
}

// Set caches the code to server ID mapping.
func (c *InviteCache) Set(ctx context.Context, code, serverID string) error {
	if err := c.client.Set(ctx, inviteKey(code), serverID, c.ttl).Err(); err != nil {
		return fmt.Errorf("invite cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached mapping for code.
func (c *InviteCache) Invalidate(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, inviteKey(code)).Err(); err != nil {
		return fmt.Errorf("invite cache invalidate: %w", err)
	}
	return nil
}
