// Package sampling wraps a single seeded generator so that every stochastic
// decision in a generation run draws from the same reproducible stream.
package sampling

import (
	"math"
	"math/rand/v2"
)

// Source is a seeded random source. It is not safe for concurrent use; a run
// owns exactly one Source.
type Source struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a Source seeded with seed. Two Sources with the same seed
// produce identical streams.
func New(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Float64 returns a value in [0,1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a value in [lo,hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Normal draws from N(mean, sd).
func (s *Source) Normal(mean, sd float64) float64 {
	return mean + sd*s.rng.NormFloat64()
}

// IntRange returns an integer in [lo,hi], inclusive on both ends.
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Shuffle permutes items in place.
func Shuffle[T any](s *Source, items []T) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Choice returns a uniformly chosen element. items must not be empty.
func Choice[T any](s *Source, items []T) T {
	return items[s.rng.IntN(len(items))]
}

// Sample returns k distinct elements in random order without modifying items.
// k is capped at len(items).
func Sample[T any](s *Source, items []T, k int) []T {
	k = min(k, len(items))
	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Weighted pairs a value with a relative weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice picks a value with probability proportional to its weight.
// choices must not be empty.
func WeightedChoice[T any](s *Source, choices []Weighted[T]) T {
	total := 0.0
	for _, c := range choices {
		total += c.Weight
	}
	r := s.rng.Float64() * total
	upto := 0.0
	for _, c := range choices {
		upto += c.Weight
		if upto >= r {
			return c.Value
		}
	}
	return choices[len(choices)-1].Value
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
