// Package cache stores computed layouts and diagrams keyed by content hashes.
//
// Three backends implement [Cache]: [FileCache] for the CLI (one JSON file
// per entry under the user cache directory), [RedisCache] for the HTTP
// server, and [NullCache] when caching is disabled. Keys come from a
// [Keyer], so backends never interpret them.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil); errors are
	// reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values. Layouts and diagrams are pure functions of
// their keys, so they live long; assessment fetches can change upstream.
const (
	LayoutTTL     = 7 * 24 * time.Hour
	DiagramTTL    = 7 * 24 * time.Hour
	AssessmentTTL = 10 * time.Minute
)
