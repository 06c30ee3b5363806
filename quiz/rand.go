package quiz

import "math/rand/v2"

// Rand is the random source used for sampling and shuffling.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// processRand uses the math/rand/v2 top-level source, which is seeded once per
// process and safe for concurrent use.
type processRand struct{}

func (processRand) IntN(n int) int { return rand.IntN(n) }

func (processRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewSeededRand returns a deterministic source. It is not safe for concurrent use.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// sampleIndices draws k distinct indices from [0, n) in draw order
func sampleIndices(rng Rand, n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
