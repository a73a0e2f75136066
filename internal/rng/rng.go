// Package rng provides the seedable random source used by the dataset generator.
package rng

import "math/rand/v2"

// Source is the set of draws the generator needs. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
	IntN(n int) int
}

// streamSalt separates the PCG stream from the seed so seed 0 is usable.
const streamSalt = 0x9e3779b97f4a7c15

// New returns a deterministic source for seed. There is no unseeded variant:
// reproducibility is always the caller's explicit choice.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^streamSalt))
}

// Normal draws from N(mean, stddev).
func Normal(src Source, mean, stddev float64) float64 {
	return mean + src.NormFloat64()*stddev
}

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntRange draws an integer from [lo, hi], both ends inclusive.
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Bernoulli returns true with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}
