package pricingrules

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const ruleSetCacheKey = "pricingrules:ruleset"

// Cache stores the pricing rule set snapshot in Redis with a TTL. A nil cache
// (or nil client) degrades to loading straight from the repository.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Fetch loads the cached rule set or populates it via the loader.
func (c *Cache) Fetch(ctx context.Context, loader func(context.Context) (*RuleSet, error)) (*RuleSet, error) {
	if loader == nil {
		return nil, errors.New("pricingrules cache: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	raw, err := c.client.Get(ctx, ruleSetCacheKey).Bytes()
	if err == nil {
		var rs RuleSet
		if err := json.Unmarshal(raw, &rs); err == nil {
			return &rs, nil
		}
		// Corrupt payload falls through to a fresh load.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	rs, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(rs)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, ruleSetCacheKey, encoded, c.ttl).Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Invalidate drops the cached snapshot after configuration changes.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, ruleSetCacheKey).Err()
}
