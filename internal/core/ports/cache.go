// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository stores JSON-encoded read models. Callers treat every
// error as a miss; the stores stay the source of truth.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	// SetWithTTL falls back to the cache's default lifetime when ttl <= 0
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}
