package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)

	assert.Equal(t, a.Sentences(10, 3, 8), b.Sentences(10, 3, 8))
	assert.Equal(t, a.Keys(10, 4), b.Keys(10, 4))

	a.Reset()
	c := NewRNG(42)
	assert.Equal(t, c.Uint64(), a.Uint64())
}

func TestRNG_Sentence(t *testing.T) {
	rng := NewRNG(1)

	for range 100 {
		s := rng.Sentence(3, 8)
		n := len(strings.Fields(s))
		require.GreaterOrEqual(t, n, 3)
		require.LessOrEqual(t, n, 8)
	}
}

func TestRNG_Keys(t *testing.T) {
	rng := NewRNG(1)

	keys := rng.Keys(1000, 4)
	distinct := map[string]struct{}{}
	for _, k := range keys {
		distinct[k] = struct{}{}
	}
	assert.LessOrEqual(t, len(distinct), 4)
	assert.Len(t, keys, 1000)
}
