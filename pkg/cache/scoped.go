package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// example when several servers share one Redis database.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "attacktree:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(treeHash, opts)
}

// DiagramKey generates a prefixed key for diagram caching.
func (k *ScopedKeyer) DiagramKey(treeHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(treeHash, opts)
}

// AssessmentKey generates a prefixed key for fetched envelopes.
func (k *ScopedKeyer) AssessmentKey(source, id string) string {
	return k.prefix + k.inner.AssessmentKey(source, id)
}
