package predicate

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/quarrydb/quarry/index"
)

// encodeScalar parses value as the given kind and writes its
// little-endian fixed-width encoding into dst, which must be
// kind.Width() bytes long.
func encodeScalar(dst []byte, kind index.Kind, value string) error {
	switch kind {
	case index.KindInt8, index.KindInt16, index.KindInt32, index.KindInt64:
		v, err := strconv.ParseInt(value, 10, kind.Width()*8)
		if err != nil {
			return &ErrInvalidScalar{Kind: kind, Value: value, cause: err}
		}
		putUint(dst, uint64(v))
	case index.KindUint8, index.KindUint16, index.KindUint32, index.KindUint64:
		v, err := strconv.ParseUint(value, 10, kind.Width()*8)
		if err != nil {
			return &ErrInvalidScalar{Kind: kind, Value: value, cause: err}
		}
		putUint(dst, v)
	case index.KindFloat32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return &ErrInvalidScalar{Kind: kind, Value: value, cause: err}
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case index.KindFloat64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &ErrInvalidScalar{Kind: kind, Value: value, cause: err}
		}
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
	case index.KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return &ErrInvalidScalar{Kind: kind, Value: value, cause: err}
		}
		if v {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	default:
		return &ErrInvalidScalar{Kind: kind, Value: value}
	}

	return nil
}

func putUint(dst []byte, v uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}
