package cache

import (
	"context"
	"driver-route-optimizer/internal/platform/metrics"
	"driver-route-optimizer/internal/platform/obs"
	"driver-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const planKeyPrefix = "plan:"

// RedisPlanCache stores serialized optimization responses in Redis with a TTL.
type RedisPlanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPlanCache(rdb *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{rdb: rdb, ttl: ttl}
}

// NewRedisPlanCacheFromURL parses a redis:// URL and verifies connectivity.
func NewRedisPlanCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisPlanCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis plan cache: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis plan cache: ping: %w", err)
	}
	return NewRedisPlanCache(rdb, ttl), nil
}

// Get returns ports.ErrCacheMiss when key is absent or expired.
func (c *RedisPlanCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, planKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.PlanCacheLookups.WithLabelValues("miss").Inc()
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis plan cache: get %q: %w", key, err)
	}
	metrics.PlanCacheLookups.WithLabelValues("hit").Inc()
	return b, nil
}

func (c *RedisPlanCache) Put(ctx context.Context, key string, payload []byte) (err error) {
	defer obs.Time(ctx, "plan.cache.Put")(&err)

	if err := c.rdb.Set(ctx, planKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis plan cache: set %q: %w", key, err)
	}
	return nil
}

func (c *RedisPlanCache) Close() error { return c.rdb.Close() }
