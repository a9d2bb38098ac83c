package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/PeterMaltzoff/huh/pkg/observability"
)

// Cache stores opaque byte payloads under string keys.
//
// Implementations must be safe for concurrent use. A TTL of zero means the
// entry does not expire.
type Cache interface {
	// Get returns the payload for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous entry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GetJSON reads key from c and decodes it into v. It returns [ErrCacheMiss]
// when the key is absent. keyType labels the lookup for cache hooks.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A corrupt entry is as good as a miss.
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
