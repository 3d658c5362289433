// Package sampler selects deterministic pseudo-random question subsets for
// exam sessions. The same seed, count, and pool size always yield the same
// set, so a shared seed string reproduces the same exam.
package sampler

import (
	"sort"
	"strconv"
	"time"
)

// rng is a mulberry32 generator: 32-bit state, one multiply-xor-shift mix per
// draw. Small and deterministic across platforms.
type rng struct {
	state uint32
}

func newRNG(seed uint32) *rng {
	return &rng{state: seed}
}

// next returns a float64 in [0, 1).
func (r *rng) next() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	z := (t ^ (t >> 15)) * (t | 1)
	z = (z + (z^(z>>7))*(z|61)) ^ z
	z ^= z >> 14
	return float64(z) / 4294967296.0
}

// SeedFromString derives the 32-bit seed by summing the character codes of
// the seed string.
func SeedFromString(seed string) uint32 {
	var sum uint32
	for _, r := range seed {
		sum += uint32(r)
	}
	return sum
}

// Indices draws count distinct indices from [0, n), re-sorted into ascending
// source order. Count is clamped to [1, n]. Reproducibility is about set
// membership, not draw order, which is why the result is sorted. An empty
// pool yields nil.
func Indices(n, count int, seed string) []int {
	if n <= 0 {
		return nil
	}
	if count < 1 {
		count = 1
	}
	if count > n {
		count = n
	}

	if seed == "" {
		seed = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	r := newRNG(SeedFromString(seed))

	// Rejection sampling: draw until count distinct indices are chosen.
	chosen := make(map[int]struct{}, count)
	for len(chosen) < count {
		chosen[int(r.next()*float64(n))] = struct{}{}
	}

	indices := make([]int, 0, count)
	for i := range chosen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Sample returns the selected elements of pool in their original order.
func Sample[T any](pool []T, count int, seed string) []T {
	indices := Indices(len(pool), count, seed)
	if indices == nil {
		return nil
	}
	out := make([]T, 0, len(indices))
	for _, i := range indices {
		out = append(out, pool[i])
	}
	return out
}
