package engine

import (
	"math/rand/v2"
	"time"
)

// RandomSource is the only source of chance in a game. *rand.Rand satisfies it.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// ClockSeed returns a non-zero seed taken from the clock.
func ClockSeed() uint64 {
	if seed := uint64(time.Now().UnixNano()); seed != 0 {
		return seed
	}
	return 1
}

// NewRandomSource returns a PCG-backed source. A zero seed is replaced by ClockSeed.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = ClockSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// intBetween returns a uniform value in [lo, hi].
func intBetween(rnd RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rnd.IntN(hi-lo+1)
}
