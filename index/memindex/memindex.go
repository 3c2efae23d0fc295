package memindex

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/quarrydb/quarry"
	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
	"github.com/quarrydb/quarry/index/indexcache"
	"github.com/quarrydb/quarry/internal/blockcodec"
	"github.com/quarrydb/quarry/internal/resource"
)

var (
	// ErrFieldMismatch is returned when a query names a field this
	// index was not built for.
	ErrFieldMismatch = errors.New("memindex: query field does not match indexed column")

	// ErrPositionsNotRetained is returned for positional queries
	// against an index built without phrase support.
	ErrPositionsNotRetained = errors.New("memindex: token positions not retained")
)

// positionGap separates tokens of distinct array elements so that a
// phrase never matches across an element boundary.
const positionGap = 100

// Options configure a new Index.
type Options struct {
	// SegmentID identifies the segment this index belongs to. Used as
	// part of cache keys.
	SegmentID uint64

	// Column is the name of the indexed column.
	Column string

	// Properties control tokenization and phrase support.
	Properties index.Properties

	// ReaderKind reported to predicate evaluation. Defaults to
	// ReaderFulltext when a parser is configured, ReaderStringType
	// otherwise.
	ReaderKind index.ReaderKind

	// Compression selects the block codec used by WriteTo. Loads
	// detect the codec from the segment header.
	Compression blockcodec.Type

	// Cache, when non-nil, holds query results and the null bitmap.
	Cache *indexcache.Cache

	// Resources, when non-nil, rate limits segment loads.
	Resources *resource.Controller

	// Logger, when non-nil, receives segment load events.
	Logger *quarry.Logger
}

type posting struct {
	rows *bitmap.Bitmap

	// positions maps row to the token positions of the term within
	// that row. Nil when the index does not retain positions.
	positions map[uint32][]uint32
}

// Index is an in-memory inverted index over one column. It implements
// index.Iterator. Add methods and queries may not be interleaved
// concurrently; queries alone are safe from multiple goroutines.
type Index struct {
	mu sync.RWMutex

	opts          Options
	terms         map[string]*posting
	nulls         *bitmap.Bitmap
	numRows       uint32
	keepPositions bool
}

// DefaultOptions returns options for an untokenized, LZ4-compressed
// index with no cache or resource controller attached.
func DefaultOptions() Options {
	return Options{
		Properties:  index.Properties{},
		Compression: blockcodec.LZ4,
	}
}

// New returns an empty index for the given options.
func New(opts Options) *Index {
	if opts.Properties == nil {
		opts.Properties = index.Properties{}
	}
	if opts.ReaderKind == index.ReaderUnknown {
		if opts.Properties.Parser() == index.ParserNone {
			opts.ReaderKind = index.ReaderStringType
		} else {
			opts.ReaderKind = index.ReaderFulltext
		}
	}

	return &Index{
		opts:          opts,
		terms:         make(map[string]*posting),
		nulls:         bitmap.New(),
		keepPositions: opts.Properties.SupportPhrase(),
	}
}

// NumRows returns the number of rows added so far.
func (ix *Index) NumRows() uint32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.numRows
}

// AddString indexes one string value at the given row.
func (ix *Index) AddString(row uint32, value string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.addTokensLocked(row, ix.tokenize(value), 0)
	ix.bumpRowsLocked(row)
}

// AddStringArray indexes an array of strings at the given row. Each
// element is tokenized independently.
func (ix *Index) AddStringArray(row uint32, values []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	base := uint32(0)
	for _, v := range values {
		tokens := ix.tokenize(v)
		ix.addTokensLocked(row, tokens, base)
		base += uint32(len(tokens)) + positionGap
	}
	ix.bumpRowsLocked(row)
}

// AddNumericTerm indexes one encoded numeric element at the given
// row. The encoding must match what queries will pass as the value.
func (ix *Index) AddNumericTerm(row uint32, encoded []byte) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.addTermLocked(row, string(encoded), 0)
	ix.bumpRowsLocked(row)
}

// AddNull marks the given row as null.
func (ix *Index) AddNull(row uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.nulls.Add(row)
	ix.bumpRowsLocked(row)
}

func (ix *Index) bumpRowsLocked(row uint32) {
	if row+1 > ix.numRows {
		ix.numRows = row + 1
	}
}

func (ix *Index) addTokensLocked(row uint32, tokens []string, base uint32) {
	for i, tok := range tokens {
		ix.addTermLocked(row, tok, base+uint32(i))
	}
}

func (ix *Index) addTermLocked(row uint32, term string, pos uint32) {
	p, ok := ix.terms[term]
	if !ok {
		p = &posting{rows: bitmap.New()}
		if ix.keepPositions {
			p.positions = make(map[uint32][]uint32)
		}
		ix.terms[term] = p
	}
	p.rows.Add(row)
	if p.positions != nil {
		p.positions[row] = append(p.positions[row], pos)
	}
}

// tokenize splits a value according to the configured parser. With no
// parser the whole value is a single untouched term.
func (ix *Index) tokenize(value string) []string {
	switch ix.opts.Properties.Parser() {
	case index.ParserEnglish:
		return strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
		})
	case index.ParserUnicode:
		return strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
	default:
		if value == "" {
			return nil
		}
		return []string{value}
	}
}

// HasNull reports whether any indexed row is null.
func (ix *Index) HasNull() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return !ix.nulls.IsEmpty()
}

// ReadNullBitmap returns a pinned handle on the null-row bitmap. The
// caller must Release it.
func (ix *Index) ReadNullBitmap() (*indexcache.Handle, error) {
	if ix.opts.Cache == nil {
		ix.mu.RLock()
		defer ix.mu.RUnlock()

		return indexcache.NewUnmanagedHandle(ix.nulls.Clone()), nil
	}

	key := indexcache.Key{
		SegmentID: ix.opts.SegmentID,
		Column:    ix.opts.Column,
		Kind:      indexcache.KindNullBitmap,
	}

	return ix.opts.Cache.GetOrLoad(key, func() (*bitmap.Bitmap, error) {
		ix.mu.RLock()
		defer ix.mu.RUnlock()

		return ix.nulls.Clone(), nil
	})
}

// ReaderKind reports the reader kind configured for this index.
func (ix *Index) ReaderKind() index.ReaderKind {
	return ix.opts.ReaderKind
}

// Properties returns the index properties.
func (ix *Index) Properties() index.Properties {
	return ix.opts.Properties
}

// ReadFromInvertedIndex runs one query against the index and ORs the
// matching rows into out.
func (ix *Index) ReadFromInvertedIndex(field string, value []byte, qt index.QueryType, numRows uint32, out *bitmap.Bitmap, numericArray bool) error {
	if field != ix.opts.Column {
		return fmt.Errorf("%w: got %q, indexed %q", ErrFieldMismatch, field, ix.opts.Column)
	}

	if ix.opts.Cache == nil {
		res, err := ix.query(value, qt, numericArray)
		if err != nil {
			return err
		}
		out.Or(res)
		bitmap.Put(res)

		return nil
	}

	key := indexcache.Key{
		SegmentID: ix.opts.SegmentID,
		Column:    field,
		Kind:      indexcache.KindQuery,
		QueryType: uint8(qt),
		Term:      string(value),
	}

	h, err := ix.opts.Cache.GetOrLoad(key, func() (*bitmap.Bitmap, error) {
		return ix.query(value, qt, numericArray)
	})
	if err != nil {
		return err
	}
	defer h.Release()

	if bm := h.Bitmap(); bm != nil {
		out.Or(bm)
	}

	return nil
}
