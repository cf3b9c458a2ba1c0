package billing

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultRedisCacheKey = "billing:rules:active"

var _ RulesCache = (*RedisRulesCache)(nil)

// RedisRulesCache implements RulesCache on Redis, sharing the active-rule
// snapshot across server instances so that an edit on one node invalidates
// all of them. The snapshot is stored as a single JSON value; expiry is
// delegated to Redis via the configured TTL.
type RedisRulesCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisRulesCache creates a Redis-backed rules cache. A zero TTL stores
// the snapshot without expiry.
func NewRedisRulesCache(client *redis.Client, config CacheConfig) *RedisRulesCache {
	return &RedisRulesCache{
		client: client,
		key:    defaultRedisCacheKey,
		ttl:    config.TTL,
	}
}

// Get retrieves the cached snapshot. Returns nil on a miss, on expiry, or
// when Redis is unreachable; callers fall through to the store either way.
func (c *RedisRulesCache) Get() []*Rule {
	data, err := c.client.Get(context.Background(), c.key).Bytes()
	if err != nil {
		return nil
	}

	var rules []*Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil
	}
	return rules
}

// Set stores a snapshot. A marshal or Redis failure leaves the cache cold;
// the next Get falls through to the store.
func (c *RedisRulesCache) Set(rules []*Rule) {
	data, err := json.Marshal(rules)
	if err != nil {
		return
	}
	c.client.Set(context.Background(), c.key, data, c.ttl)
}

// Invalidate deletes the cached snapshot.
func (c *RedisRulesCache) Invalidate() {
	c.client.Del(context.Background(), c.key)
}

// IsValid reports whether a snapshot is currently cached.
func (c *RedisRulesCache) IsValid() bool {
	n, err := c.client.Exists(context.Background(), c.key).Result()
	return err == nil && n > 0
}
