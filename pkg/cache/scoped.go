package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or
// models served from one Redis) keep separate namespaces.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "huh:")
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

// ResponseKey generates a prefixed key for ingestion responses.
func (k *ScopedKeyer) ResponseKey(model, text string) string {
	return k.prefix + k.inner.ResponseKey(model, text)
}

// LayoutKey generates a prefixed key for layout results.
func (k *ScopedKeyer) LayoutKey(requestHash string) string {
	return k.prefix + k.inner.LayoutKey(requestHash)
}

// RenderKey generates a prefixed key for rendered diagrams.
func (k *ScopedKeyer) RenderKey(dotHash, engine string) string {
	return k.prefix + k.inner.RenderKey(dotHash, engine)
}
