package memindex

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
	"github.com/quarrydb/quarry/internal/blockcodec"
	"github.com/quarrydb/quarry/internal/hash"
)

// Segment stream layout: a fixed header followed by compressed
// blocks. The header carries a CRC32C of the uncompressed payload;
// the blocks concatenate into that payload, holding the column name,
// properties, null bitmap and posting lists.
const (
	segmentMagic   = uint32(0x51494458) // "QIDX"
	segmentVersion = uint8(1)

	// segmentBlockSize caps the payload carried by one block.
	segmentBlockSize = 256 << 10
)

// ErrBadSegment is returned when a segment stream fails validation.
var ErrBadSegment = errors.New("memindex: bad segment")

// WriteTo serializes the index to w using the configured block codec.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	ix.mu.RLock()
	payload, err := ix.encodeLocked()
	ix.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	var header [10]byte
	binary.LittleEndian.PutUint32(header[0:4], segmentMagic)
	header[4] = segmentVersion
	header[5] = byte(ix.opts.Compression)
	binary.LittleEndian.PutUint32(header[6:10], hash.CRC32C(payload))

	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	for off := 0; off < len(payload); off += segmentBlockSize {
		end := min(off+segmentBlockSize, len(payload))
		bn, err := blockcodec.WriteBlock(w, payload[off:end], ix.opts.Compression)
		written += int64(bn)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// Load reads a segment written by WriteTo. The cache, resource
// controller and logger in opts are attached to the loaded index;
// column, properties and reader kind come from the stream.
func Load(ctx context.Context, r io.Reader, opts Options) (*Index, error) {
	var header [10]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrBadSegment, err)
	}
	if binary.LittleEndian.Uint32(header[0:4]) != segmentMagic {
		return nil, fmt.Errorf("%w: magic mismatch", ErrBadSegment)
	}
	if header[4] != segmentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadSegment, header[4])
	}
	codec := blockcodec.Type(header[5])
	wantCRC := binary.LittleEndian.Uint32(header[6:10])

	var payload bytes.Buffer
	var total int64
	for {
		block, err := blockcodec.ReadBlock(r, codec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.LogSegmentLoad(ctx, total, 0, err)
			}

			return nil, err
		}
		total += int64(len(block))
		if opts.Resources != nil {
			if err := opts.Resources.WaitIO(ctx, len(block)); err != nil {
				return nil, err
			}
		}
		payload.Write(block)
	}

	if got := hash.CRC32C(payload.Bytes()); got != wantCRC {
		err := fmt.Errorf("%w: checksum mismatch: got %08x, want %08x", ErrBadSegment, got, wantCRC)
		if opts.Logger != nil {
			opts.Logger.LogSegmentLoad(ctx, total, 0, err)
		}

		return nil, err
	}

	opts.Compression = codec
	ix, err := decode(payload.Bytes(), opts)
	if opts.Logger != nil {
		terms := 0
		if ix != nil {
			terms = len(ix.terms)
		}
		opts.Logger.LogSegmentLoad(ctx, total, terms, err)
	}

	return ix, err
}

func (ix *Index) encodeLocked() ([]byte, error) {
	var buf bytes.Buffer

	writeString(&buf, ix.opts.Column)
	writeUint32(&buf, ix.numRows)
	buf.WriteByte(byte(ix.opts.ReaderKind))
	if ix.keepPositions {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	props := ix.opts.Properties
	writeUint32(&buf, uint32(len(props)))
	for _, k := range slices.Sorted(maps.Keys(props)) {
		writeString(&buf, k)
		writeString(&buf, props[k])
	}

	if err := writeBitmap(&buf, ix.nulls); err != nil {
		return nil, err
	}

	terms := slices.Sorted(maps.Keys(ix.terms))
	writeUint32(&buf, uint32(len(terms)))
	for _, term := range terms {
		p := ix.terms[term]
		writeString(&buf, term)
		if err := writeBitmap(&buf, p.rows); err != nil {
			return nil, err
		}
		if !ix.keepPositions {
			continue
		}
		writeUint32(&buf, uint32(len(p.positions)))
		for _, row := range slices.Sorted(maps.Keys(p.positions)) {
			writeUint32(&buf, row)
			positions := p.positions[row]
			writeUint32(&buf, uint32(len(positions)))
			for _, pos := range positions {
				writeUint32(&buf, pos)
			}
		}
	}

	return buf.Bytes(), nil
}

func decode(payload []byte, opts Options) (*Index, error) {
	rd := &segmentReader{buf: payload}

	opts.Column = rd.readString()
	numRows := rd.readUint32()
	opts.ReaderKind = index.ReaderKind(rd.readByte())
	keepPositions := rd.readByte() == 1

	nprops := rd.readUint32()
	props := make(index.Properties, nprops)
	for range nprops {
		k := rd.readString()
		props[k] = rd.readString()
	}
	opts.Properties = props

	ix := New(opts)
	ix.numRows = numRows
	ix.keepPositions = keepPositions

	if err := rd.readBitmapInto(ix.nulls); err != nil {
		return nil, err
	}

	nterms := rd.readUint32()
	for range nterms {
		term := rd.readString()
		p := &posting{rows: bitmap.New()}
		if err := rd.readBitmapInto(p.rows); err != nil {
			return nil, err
		}
		if keepPositions {
			nrows := rd.readUint32()
			p.positions = make(map[uint32][]uint32, nrows)
			for range nrows {
				row := rd.readUint32()
				npos := rd.readUint32()
				positions := make([]uint32, npos)
				for i := range positions {
					positions[i] = rd.readUint32()
				}
				p.positions[row] = positions
			}
		}
		ix.terms[term] = p
	}

	if rd.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSegment, rd.err)
	}

	return ix, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeBitmap(buf *bytes.Buffer, bm *bitmap.Bitmap) error {
	var body bytes.Buffer
	if _, err := bm.WriteTo(&body); err != nil {
		return err
	}
	writeUint32(buf, uint32(body.Len()))
	buf.Write(body.Bytes())

	return nil
}

// segmentReader decodes the payload sequentially. The first failure
// sticks and every later read returns zero values.
type segmentReader struct {
	buf []byte
	off int
	err error
}

func (r *segmentReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.err = io.ErrUnexpectedEOF

		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *segmentReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *segmentReader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.LittleEndian.Uint32(b)
}

func (r *segmentReader) readString() string {
	n := r.readUint32()

	return string(r.take(int(n)))
}

func (r *segmentReader) readBitmapInto(bm *bitmap.Bitmap) error {
	n := r.readUint32()
	body := r.take(int(n))
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrBadSegment, r.err)
	}
	if _, err := bm.ReadFrom(bytes.NewReader(body)); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSegment, err)
	}

	return nil
}
