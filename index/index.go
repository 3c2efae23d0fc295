// Package index defines the inverted-index surface consumed by predicate
// evaluation: the iterator handle the executor hands to a predicate, the
// query kinds an index understands, and the column type descriptors used
// to pick a value encoding.
//
// Implementations live elsewhere (see memindex for the in-memory one); the
// evaluator depends only on this package.
package index

import (
	"fmt"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index/indexcache"
)

// QueryType is the kind of query issued against an inverted index.
type QueryType uint8

const (
	// QueryUnknown is the zero value; issuing it is a caller bug.
	QueryUnknown QueryType = iota
	// QueryAny matches rows containing at least one of the terms.
	QueryAny
	// QueryAll matches rows containing every term.
	QueryAll
	// QueryPhrase matches rows containing the terms adjacently, in order.
	QueryPhrase
	// QueryPhrasePrefix is QueryPhrase with the last term prefix-expanded.
	QueryPhrasePrefix
	// QueryRegexp matches rows containing any term matching the pattern.
	QueryRegexp
	// QueryPhraseEdge is QueryPhrase with the first term suffix-matched
	// and the last term prefix-matched.
	QueryPhraseEdge
)

func (q QueryType) String() string {
	switch q {
	case QueryAny:
		return "ANY"
	case QueryAll:
		return "ALL"
	case QueryPhrase:
		return "PHRASE"
	case QueryPhrasePrefix:
		return "PHRASE_PREFIX"
	case QueryRegexp:
		return "REGEXP"
	case QueryPhraseEdge:
		return "PHRASE_EDGE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(q))
	}
}

// ReaderKind identifies the index implementation behind an iterator.
type ReaderKind uint8

const (
	// ReaderUnknown is the zero value.
	ReaderUnknown ReaderKind = iota
	// ReaderFulltext is a tokenized full-text index.
	ReaderFulltext
	// ReaderStringType is an untokenized exact-string index.
	ReaderStringType
	// ReaderBKD is a numeric block KD index.
	ReaderBKD
)

// Iterator is the per-column index handle consumed by predicate
// evaluation. Reads may block on underlying storage; cancellation is the
// surrounding executor's concern.
type Iterator interface {
	// HasNull reports whether the indexed column may contain nulls.
	HasNull() bool

	// ReadNullBitmap returns a pinned handle to the column's null-row
	// bitmap. The caller must release the handle on every exit path.
	ReadNullBitmap() (*indexcache.Handle, error)

	// ReadFromInvertedIndex runs a query against the index and ORs the
	// matching row ids into out. value is the encoded query value: raw
	// bytes of the literal for string columns, fixed-width binary for
	// numeric-array elements (numericArray true).
	ReadFromInvertedIndex(field string, value []byte, qt QueryType, numRows uint32, out *bitmap.Bitmap, numericArray bool) error

	// ReaderKind identifies the underlying index implementation.
	ReaderKind() ReaderKind

	// Properties returns the index build configuration (parser, phrase
	// support, ...). Read-only.
	Properties() Properties
}
