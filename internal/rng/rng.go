// Package rng provides deterministic pseudo-random streams derived from
// string seeds. A run seed fans out into independent per-floor and per-loot
// streams so that generation and loot rolls replay identically for the same
// (seed, floor, scope) triple.
package rng

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Stream is a seeded pseudo-random source. Not safe for concurrent use;
// every stream belongs to exactly one run task.
type Stream struct {
	r *rand.Rand
}

// New derives a stream from an arbitrary string seed.
func New(seed string) *Stream {
	h := fnv.New64a()
	h.Write([]byte(seed))
	lo := h.Sum64()
	h.Write([]byte{0x9e, 0x37, 0x79, 0xb9})
	hi := h.Sum64()
	return &Stream{r: rand.New(rand.NewPCG(lo, hi))}
}

// ForFloor derives the generation stream for one floor of a run.
func ForFloor(runSeed string, floor int) *Stream {
	return New(fmt.Sprintf("%s_floor_%d", runSeed, floor))
}

// ForLoot derives a loot stream scoped to one roll site (boss, chest id,
// enemy id) so opening order cannot perturb unrelated rolls.
func ForLoot(runSeed string, floor int, scope string) *Stream {
	return New(fmt.Sprintf("%s_loot_%d_%s", runSeed, floor, scope))
}

// Next returns a float64 in [0, 1).
func (s *Stream) Next() float64 {
	return s.r.Float64()
}

// IntBetween returns an int in [min, max] inclusive. min > max panics.
func (s *Stream) IntBetween(min, max int) int {
	if min > max {
		panic(fmt.Sprintf("rng: IntBetween(%d, %d)", min, max))
	}
	return min + s.r.IntN(max-min+1)
}

// FloatBetween returns a float64 in [min, max).
func (s *Stream) FloatBetween(min, max float64) float64 {
	return min + s.r.Float64()*(max-min)
}

// Chance returns true with probability p (clamped to [0, 1]).
func (s *Stream) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}

// Pick returns a uniformly chosen element. Empty input panics; callers
// guard with their own emptiness checks.
func Pick[T any](s *Stream, items []T) T {
	return items[s.r.IntN(len(items))]
}

// Shuffle permutes items in place and returns the same slice.
func Shuffle[T any](s *Stream, items []T) []T {
	s.r.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items
}

// WeightedPick returns the index of a weight chosen proportionally to its
// value. Zero or negative total weight falls back to index 0.
func WeightedPick(s *Stream, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	roll := s.r.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		roll -= w
		if roll < 0 {
			return i
		}
	}
	return len(weights) - 1
}
