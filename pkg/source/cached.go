package source

import (
	"context"
	"time"

	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/observability"
)

// Cached memoizes Fetch results of an inner source. List is never cached.
type Cached struct {
	inner Source
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps inner. A nil cache disables caching, a nil keyer uses the
// default keyer and a zero ttl uses [cache.AssessmentTTL].
func NewCached(inner Source, c cache.Cache, k cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.AssessmentTTL
	}
	return &Cached{inner: inner, cache: c, keyer: k, ttl: ttl}
}

// Name returns the inner source's name.
func (s *Cached) Name() string { return s.inner.Name() }

// Fetch returns a cached envelope when present, otherwise fetches and stores
// it. Cache failures are ignored; only the inner source can fail a fetch.
func (s *Cached) Fetch(ctx context.Context, id string) ([]byte, error) {
	key := s.keyer.AssessmentKey(s.inner.Name(), id)
	hooks := observability.Cache()

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "assessment")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "assessment")

	data, err := s.inner.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
		hooks.OnCacheSet(ctx, "assessment", len(data))
	}
	return data, nil
}

// List delegates to the inner source.
func (s *Cached) List(ctx context.Context) ([]Assessment, error) {
	return s.inner.List(ctx)
}

// Ensure Cached implements Source.
var _ Source = (*Cached)(nil)
