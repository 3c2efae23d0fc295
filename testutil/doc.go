// Package testutil provides testing utilities.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source and generators for
// text corpora and grouping keys.
//
// # Deterministic Corpora
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Sentences(1000, 5, 12)  // 1000 docs, 5-12 words each
//	keys := rng.Keys(1000, 16)          // 1000 keys over 16 groups
package testutil
