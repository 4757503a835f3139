// internal/adapters/redis_adapter/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/resell-orders/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// scanBatch is the SCAN COUNT hint and the UNLINK chunk size used by
// pattern invalidation
const scanBatch = 200

// Cache keeps JSON-encoded order views in Redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *Cache implements the CacheRepository interface.
var _ ports.CacheRepository = (*Cache)(nil)

// NewCache creates a cache whose entries live for ttl unless a caller
// asks for another lifetime
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
	}
}

// SetWithTTL stores value under key
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		return &CacheError{Op: "marshal", Key: key, Err: err}
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return &CacheError{Op: "set", Key: key, Err: err}
	}

	c.logger.DebugContext(ctx, "cache set",
		slog.String("key", key),
		slog.Duration("ttl", ttl))
	return nil
}

// Get decodes the value under key into dest. A missing key returns
// ports.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ports.ErrCacheMiss
	case err != nil:
		return &CacheError{Op: "get", Key: key, Err: err}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// a stale encoding is dropped so the next read repopulates it
		_ = c.client.Unlink(ctx, key).Err()
		return &CacheError{Op: "unmarshal", Key: key, Err: err}
	}
	return nil
}

// Delete unlinks keys
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return &CacheError{Op: "unlink", Key: keys[0], Err: err}
	}

	c.logger.DebugContext(ctx, "cache invalidated", slog.Int("keys", len(keys)))
	return nil
}

// DeletePattern unlinks every key matching pattern. Keys are collected
// before anything is removed so the SCAN cursor walks a stable keyspace.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return &CacheError{Op: "scan", Key: pattern, Err: err}
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := c.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
			return &CacheError{Op: "unlink", Key: pattern, Err: err}
		}
	}

	c.logger.DebugContext(ctx, "cache pattern invalidated",
		slog.String("pattern", pattern),
		slog.Int("keys", len(keys)))
	return nil
}

// CacheError reports a failed cache operation
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
