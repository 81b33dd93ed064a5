package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultUnreadTTL = 30 * time.Second

// UnreadCache caches per-owner unread notification counts. Entries carry a
// short TTL, so role-addressed notifications (which have no single owner key
// to invalidate) converge within one TTL window.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = defaultUnreadTTL
	}
	return &UnreadCache{client: client, ttl: ttl}
}

func unreadKey(owner string) string {
	return fmt.Sprintf("unread:%s", owner)
}

// Get returns the cached count and whether the key was present.
func (c *UnreadCache) Get(ctx context.Context, owner string) (int64, bool, error) {
	n, err := c.client.Get(ctx, unreadKey(owner)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return n, true, nil
}

func (c *UnreadCache) Set(ctx context.Context, owner string, n int64) error {
	return c.client.Set(ctx, unreadKey(owner), n, c.ttl).Err()
}

// Invalidate drops the cached counts for the given owners.
func (c *UnreadCache) Invalidate(ctx context.Context, owners ...string) error {
	if len(owners) == 0 {
		return nil
	}
	keys := make([]string, 0, len(owners))
	for _, owner := range owners {
		keys = append(keys, unreadKey(owner))
	}
	return c.client.Del(ctx, keys...).Err()
}
