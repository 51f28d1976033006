package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant or deployment
// its own namespace in a shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// DiagramKey generates a prefixed key for converted diagrams.
func (k *ScopedKeyer) DiagramKey(contentHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(contentHash, opts)
}

// ImageKey generates a prefixed key for images.
func (k *ScopedKeyer) ImageKey(diagramHash string, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(diagramHash, opts)
}

// EngineKey generates a prefixed key for engine output.
func (k *ScopedKeyer) EngineKey(cloudHash string, opts EngineKeyOpts) string {
	return k.prefix + k.inner.EngineKey(cloudHash, opts)
}
