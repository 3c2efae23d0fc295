package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// vocabulary is the word pool for generated text. Small on purpose so
// that generated documents share terms.
var vocabulary = []string{
	"query", "engine", "segment", "column", "index", "bitmap", "row",
	"phrase", "token", "match", "filter", "scan", "merge", "flush",
	"cache", "block", "codec", "shard", "batch", "group", "apache",
	"druid", "storage", "vector", "term", "posting", "null", "select",
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Word returns one random vocabulary word.
func (r *RNG) Word() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return vocabulary[r.rand.Intn(len(vocabulary))]
}

// Sentence returns a space-joined sentence of minWords to maxWords
// vocabulary words. Locks only once per call.
func (r *RNG) Sentence(minWords, maxWords int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sentenceLocked(minWords, maxWords)
}

func (r *RNG) sentenceLocked(minWords, maxWords int) string {
	n := minWords
	if maxWords > minWords {
		n += r.rand.Intn(maxWords - minWords + 1)
	}

	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[r.rand.Intn(len(vocabulary))]
	}

	return strings.Join(words, " ")
}

// Sentences returns num sentences of minWords to maxWords each.
func (r *RNG) Sentences(num, minWords, maxWords int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, num)
	for i := range out {
		out[i] = r.sentenceLocked(minWords, maxWords)
	}

	return out
}

// Keys returns num grouping keys drawn from cardinality distinct
// values.
func (r *RNG) Keys(num, cardinality int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, num)
	for i := range out {
		out[i] = fmt.Sprintf("key-%d", r.rand.Intn(cardinality))
	}

	return out
}

// Values returns num values in [0, bound).
func (r *RNG) Values(num int, bound float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, num)
	for i := range out {
		out[i] = r.rand.Float64() * bound
	}

	return out
}
