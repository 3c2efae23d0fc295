package hashtable

import "hash/maphash"

// Hasher produces the probe hash for a key. Implementations must be pure:
// equal keys always hash equal for the lifetime of a table.
type Hasher[K comparable] interface {
	Hash(key K) uint64
}

// SeededHasher hashes any comparable key with runtime maphash, using a
// per-hasher random seed. This is the default for all table instantiations.
type SeededHasher[K comparable] struct {
	seed maphash.Seed
}

// NewSeededHasher creates a SeededHasher with a fresh random seed.
func NewSeededHasher[K comparable]() SeededHasher[K] {
	return SeededHasher[K]{seed: maphash.MakeSeed()}
}

// Hash implements Hasher.
func (h SeededHasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

// FuncHasher adapts a plain function to the Hasher interface.
// Useful for tests and for callers with a precomputed hash scheme.
type FuncHasher[K comparable] func(key K) uint64

// Hash implements Hasher.
func (f FuncHasher[K]) Hash(key K) uint64 {
	return f(key)
}
