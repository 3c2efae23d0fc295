package predicate

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/index"
)

func TestEncodeScalar(t *testing.T) {
	t.Run("int16 negative", func(t *testing.T) {
		buf := make([]byte, 2)
		require.NoError(t, encodeScalar(buf, index.KindInt16, "-2"))
		assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(buf)))
	})

	t.Run("uint64", func(t *testing.T) {
		buf := make([]byte, 8)
		require.NoError(t, encodeScalar(buf, index.KindUint64, "18446744073709551615"))
		assert.Equal(t, uint64(math.MaxUint64), binary.LittleEndian.Uint64(buf))
	})

	t.Run("float32", func(t *testing.T) {
		buf := make([]byte, 4)
		require.NoError(t, encodeScalar(buf, index.KindFloat32, "1.5"))
		assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	})

	t.Run("bool", func(t *testing.T) {
		buf := make([]byte, 1)
		require.NoError(t, encodeScalar(buf, index.KindBool, "true"))
		assert.Equal(t, byte(1), buf[0])
	})

	t.Run("range overflow", func(t *testing.T) {
		buf := make([]byte, 1)
		err := encodeScalar(buf, index.KindInt8, "300")
		var invalidErr *ErrInvalidScalar
		assert.ErrorAs(t, err, &invalidErr)
	})

	t.Run("non-numeric kind", func(t *testing.T) {
		err := encodeScalar(nil, index.KindString, "x")
		var invalidErr *ErrInvalidScalar
		assert.ErrorAs(t, err, &invalidErr)
	})
}
