package cache

// ScopedKeyer prefixes every key of an inner Keyer. Several datasets or
// services can then share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lfw:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a Keyer that prepends prefix to the keys of inner.
// A nil inner uses the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AugmentKey implements [Keyer].
func (k *ScopedKeyer) AugmentKey(imageHash string, opts AugmentKeyOpts) string {
	return k.prefix + k.inner.AugmentKey(imageHash, opts)
}
