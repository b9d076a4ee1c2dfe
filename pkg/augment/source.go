package augment

import "math/rand/v2"

// Source is the random stream consumed by the augmentation engine.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0.0, 1.0).
	Float64() float64
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
	// NormFloat64 returns a standard normal value.
	NormFloat64() float64
}

// NewSource returns a PCG-backed Source. Streams with the same seed and
// stream number produce identical sequences.
func NewSource(seed uint64, stream ...uint64) *rand.Rand {
	var s uint64
	if len(stream) > 0 {
		s = stream[0]
	}
	return rand.New(rand.NewPCG(seed, s))
}

// uniform draws from [lo, hi). lo == hi always yields lo.
func uniform(rng Source, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// randInt draws an integer from [lo, hi], both ends inclusive.
func randInt(rng Source, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
