package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs the "none" cache backend and one-off
// exports that have no cache directory to write to.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get misses.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
