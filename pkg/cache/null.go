package cache

import (
	"context"
	"time"
)

// NullCache stands in when layouts and diagrams should always be computed:
// with --no-cache, when no cache directory can be resolved, or when a
// source.Cached wrapper is built without a cache.
type NullCache struct {
	// Reason says why caching is off. It is only reported.
	Reason string
}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache {
	return &NullCache{}
}

// Disabled returns a NullCache that records why caching is off.
func Disabled(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

// Get always misses. It fails only when ctx is done.
func (c *NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

// Set discards data.
func (c *NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (c *NullCache) Delete(ctx context.Context, _ string) error {
	return ctx.Err()
}

func (c *NullCache) Close() error { return nil }

func (c *NullCache) String() string {
	if c.Reason == "" {
		return "disabled"
	}
	return "disabled (" + c.Reason + ")"
}

var _ Cache = (*NullCache)(nil)
