package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix namespaces cached reports by store version.
	CacheKeyPrefix = "complaints:analytics:v"
	// DefaultCacheTTL bounds how long a report for one version is kept.
	DefaultCacheTTL = 15 * time.Second
)

// Cache stores reports keyed by the store version they were computed from.
type Cache interface {
	Get(ctx context.Context, version int64) (*Report, bool, error)
	Set(ctx context.Context, version int64, report Report) error
}

// RedisCache keeps reports in Redis.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache builds a cache; ttl <= 0 uses DefaultCacheTTL.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, prefix: CacheKeyPrefix, ttl: ttl}
}

func (c *RedisCache) key(version int64) string {
	return fmt.Sprintf("%s%d", c.prefix, version)
}

// Get returns the report cached for version, if any.
func (c *RedisCache) Get(ctx context.Context, version int64) (*Report, bool, error) {
	raw, err := c.client.Get(ctx, c.key(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get analytics cache: %w", err)
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false, fmt.Errorf("decode analytics cache: %w", err)
	}
	return &report, true, nil
}

// Set stores report under version.
func (c *RedisCache) Set(ctx context.Context, version int64, report Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(version), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set analytics cache: %w", err)
	}
	return nil
}
