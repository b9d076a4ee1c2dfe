// Package cache provides the storage layer for augmented image sets.
//
// A [Cache] stores opaque byte blobs under string keys with an optional TTL.
// Keys are produced by a [Keyer] so that every component addresses the same
// entry for the same input: the hash of the source pixels plus every
// parameter that influences the random draws.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (service deployments)
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLAugment is how long an augmented set stays cached. Sets are fully
	// determined by their key, so the TTL only bounds disk usage.
	TTLAugment = 7 * 24 * time.Hour
)

// Cache stores byte blobs by key.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// AugmentKeyOpts holds every input besides the pixels that determines an
// augmented set.
type AugmentKeyOpts struct {
	// Config is a fingerprint of the augmentation configuration.
	Config string `json:"config"`
	Seed   uint64 `json:"seed"`
	Index  int    `json:"index"`
	Count  int    `json:"count"`
}

// Keyer derives cache keys.
type Keyer interface {
	// AugmentKey returns the key of the augmented set of the image whose
	// pixel hash is imageHash.
	AugmentKey(imageHash string, opts AugmentKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AugmentKey implements [Keyer].
func (DefaultKeyer) AugmentKey(imageHash string, opts AugmentKeyOpts) string {
	return hashKey("augment", imageHash, opts)
}

var _ Keyer = DefaultKeyer{}
