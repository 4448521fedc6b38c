package common

import (
	"context"
	"encoding/json"
	"time"
)

// CacheInterface defines the contract for cache implementations. Values are
// opaque byte slices so every backend stores the same encoded payload.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(ctx context.Context, key string, value []byte, duration time.Duration)

	// Get retrieves a value from cache by key
	// Returns the value and true if found, nil and false otherwise
	Get(ctx context.Context, key string) ([]byte, bool)

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string)

	// Flush drops every cached entry
	Flush(ctx context.Context) error

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrLoad returns the cached value for key, or calls loader and caches its
// JSON encoding. The boolean reports a cache hit. Loader errors are never cached.
func GetOrLoad[T any](
	ctx context.Context,
	c CacheInterface,
	key string,
	duration time.Duration,
	loader func() (T, error),
) (T, bool, error) {
	if raw, found := c.Get(ctx, key); found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, true, nil
		}
		c.Delete(ctx, key)
	}

	val, err := loader()
	if err != nil {
		return val, false, err
	}

	if raw, err := json.Marshal(val); err == nil {
		c.Set(ctx, key, raw, duration)
	}
	return val, false, nil
}
