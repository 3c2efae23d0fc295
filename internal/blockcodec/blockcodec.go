// Package blockcodec implements the length-framed compressed block format
// used by index segment serialization.
//
// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 means the payload is stored uncompressed, which
// happens when compression is disabled or does not pay for itself.
package blockcodec

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used for a block.
type Type uint8

const (
	// None stores blocks uncompressed.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast, good for hot posting lists).
	LZ4 Type = 1
	// ZSTD uses ZSTD block compression (better ratio, good for cold segments).
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

const headerSize = 8

// ErrCorruptBlock is returned when a block frame is truncated or the
// decompressed payload does not match the recorded size.
var ErrCorruptBlock = errors.New("blockcodec: corrupt block")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// CompressBlock frames data as a single block, compressing with the given
// algorithm. Incompressible payloads (ratio > 0.9) are stored raw.
func CompressBlock(data []byte, t Type) ([]byte, error) {
	var compressed []byte
	var err error

	switch t {
	case LZ4:
		compressed, err = compressLZ4(data)
	case ZSTD:
		compressed = compressZSTD(data)
	case None:
		// stored raw below
	default:
		return nil, errors.New("blockcodec: unknown compression type")
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // 0 = uncompressed
		copy(result[headerSize:], data)
		return result, nil
	}

	result := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[headerSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	compressed := make([]byte, bound)

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// DecompressBlock decodes one framed block produced by CompressBlock.
func DecompressBlock(frame []byte, t Type) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, ErrCorruptBlock
	}

	uncompressedSize := binary.LittleEndian.Uint32(frame[0:])
	compressedSize := binary.LittleEndian.Uint32(frame[4:])

	if compressedSize == 0 {
		if uint32(len(frame)) < headerSize+uncompressedSize {
			return nil, ErrCorruptBlock
		}
		return frame[headerSize : headerSize+uncompressedSize], nil
	}

	if uint32(len(frame)) < headerSize+compressedSize {
		return nil, ErrCorruptBlock
	}
	payload := frame[headerSize : headerSize+compressedSize]

	switch t {
	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, ErrCorruptBlock
		}
		return decoded, nil

	default: // LZ4
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, ErrCorruptBlock
		}
		return result, nil
	}
}

// WriteBlock frames and writes one block to w.
// Returns the number of bytes written to w.
func WriteBlock(w io.Writer, data []byte, t Type) (int, error) {
	frame, err := CompressBlock(data, t)
	if err != nil {
		return 0, err
	}
	return w.Write(frame)
}

// ReadBlock reads and decodes one framed block from r.
// Returns io.EOF cleanly when no further block exists.
func ReadBlock(r io.Reader, t Type) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrCorruptBlock
		}
		return nil, err
	}

	uncompressedSize := binary.LittleEndian.Uint32(header[0:])
	compressedSize := binary.LittleEndian.Uint32(header[4:])

	payloadSize := compressedSize
	if compressedSize == 0 {
		payloadSize = uncompressedSize
	}

	frame := make([]byte, headerSize+payloadSize)
	copy(frame, header[:])
	if _, err := io.ReadFull(r, frame[headerSize:]); err != nil {
		return nil, ErrCorruptBlock
	}

	return DecompressBlock(frame, t)
}
