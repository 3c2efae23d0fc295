package predicate

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
	"github.com/quarrydb/quarry/index/indexcache"
	"github.com/quarrydb/quarry/index/memindex"
)

// stubIterator records reads and serves canned match and null
// bitmaps.
type stubIterator struct {
	readerKind index.ReaderKind
	props      index.Properties
	match      *bitmap.Bitmap
	nulls      *bitmap.Bitmap
	readErr    error

	reads       int
	lastValue   []byte
	lastQuery   index.QueryType
	lastNumeric bool
}

func (s *stubIterator) HasNull() bool {
	return s.nulls != nil && !s.nulls.IsEmpty()
}

func (s *stubIterator) ReadNullBitmap() (*indexcache.Handle, error) {
	return indexcache.NewUnmanagedHandle(s.nulls.Clone()), nil
}

func (s *stubIterator) ReadFromInvertedIndex(_ string, value []byte, qt index.QueryType, _ uint32, out *bitmap.Bitmap, numericArray bool) error {
	s.reads++
	s.lastValue = append([]byte(nil), value...)
	s.lastQuery = qt
	s.lastNumeric = numericArray
	if s.readErr != nil {
		return s.readErr
	}
	if s.match != nil {
		out.Or(s.match)
	}

	return nil
}

func (s *stubIterator) ReaderKind() index.ReaderKind {
	return s.readerKind
}

func (s *stubIterator) Properties() index.Properties {
	if s.props == nil {
		return index.Properties{}
	}

	return s.props
}

func TestMatchType_QueryType(t *testing.T) {
	tests := []struct {
		match MatchType
		query index.QueryType
	}{
		{MatchAny, index.QueryAny},
		{MatchAll, index.QueryAll},
		{MatchPhrase, index.QueryPhrase},
		{MatchPhrasePrefix, index.QueryPhrasePrefix},
		{MatchRegexp, index.QueryRegexp},
		{MatchPhraseEdge, index.QueryPhraseEdge},
	}

	for _, tt := range tests {
		t.Run(tt.match.String(), func(t *testing.T) {
			qt, err := tt.match.QueryType()
			require.NoError(t, err)
			assert.Equal(t, tt.query, qt)
		})
	}

	qt, err := MatchType(250).QueryType()
	assert.Equal(t, index.QueryUnknown, qt)

	var unknownErr *ErrUnknownMatchType
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, MatchType(250), unknownErr.MatchType)
}

func TestEvaluate_NilIterator(t *testing.T) {
	sel := bitmap.Of(1, 2, 3)

	p := NewMatch(0, "anything", MatchAny)
	require.NoError(t, p.Evaluate(context.Background(), index.Column{Name: "c", Type: index.String()}, nil, 3, sel))

	assert.Equal(t, []uint32{1, 2, 3}, sel.ToSlice())
}

func TestEvaluate_PhraseGate(t *testing.T) {
	col := index.Column{Name: "body", Type: index.String()}

	for _, mt := range []MatchType{MatchPhrase, MatchPhrasePrefix, MatchPhraseEdge} {
		t.Run(mt.String(), func(t *testing.T) {
			it := &stubIterator{
				readerKind: index.ReaderFulltext,
				props:      index.Properties{index.PropParser: index.ParserEnglish},
			}

			sel := bitmap.Of(1, 2)
			err := NewMatch(0, "a b", mt).Evaluate(context.Background(), col, it, 2, sel)
			assert.ErrorIs(t, err, ErrPhraseNotSupported)

			// The gate fires before any index read.
			assert.Zero(t, it.reads)
			assert.Equal(t, []uint32{1, 2}, sel.ToSlice())
		})
	}

	// Phrase support lifts the gate.
	it := &stubIterator{
		readerKind: index.ReaderFulltext,
		props: index.Properties{
			index.PropParser:        index.ParserEnglish,
			index.PropSupportPhrase: "true",
		},
		match: bitmap.Of(1),
	}
	sel := bitmap.Of(1, 2)
	require.NoError(t, NewMatch(0, "a b", MatchPhrase).Evaluate(context.Background(), col, it, 2, sel))
	assert.Equal(t, []uint32{1}, sel.ToSlice())

	// Non-fulltext readers are not gated.
	it = &stubIterator{readerKind: index.ReaderStringType, match: bitmap.Of(2)}
	sel = bitmap.Of(1, 2)
	require.NoError(t, NewMatch(0, "a b", MatchPhrase).Evaluate(context.Background(), col, it, 2, sel))
	assert.Equal(t, []uint32{2}, sel.ToSlice())
}

func TestEvaluate_NullMasking(t *testing.T) {
	it := &stubIterator{
		readerKind: index.ReaderFulltext,
		match:      bitmap.Of(1, 3, 5),
		nulls:      bitmap.Of(5),
	}

	sel := bitmap.Of(1, 2, 3, 4, 5)
	p := NewMatch(0, "term", MatchAny)
	require.NoError(t, p.Evaluate(context.Background(), index.Column{Name: "c", Type: index.String()}, it, 6, sel))

	// A null row never survives, even when the index matched it.
	assert.Equal(t, []uint32{1, 3}, sel.ToSlice())
}

func TestEvaluate_StringColumn(t *testing.T) {
	it := &stubIterator{readerKind: index.ReaderFulltext, match: bitmap.Of(0)}

	sel := bitmap.Of(0, 1)
	p := NewMatch(0, "needle", MatchAll)
	require.NoError(t, p.Evaluate(context.Background(), index.Column{Name: "c", Type: index.String()}, it, 2, sel))

	assert.Equal(t, []byte("needle"), it.lastValue)
	assert.Equal(t, index.QueryAll, it.lastQuery)
	assert.False(t, it.lastNumeric)

	// Array-of-string columns take the same path.
	it = &stubIterator{readerKind: index.ReaderFulltext, match: bitmap.Of(1)}
	sel = bitmap.Of(0, 1)
	require.NoError(t, p.Evaluate(context.Background(), index.Column{Name: "c", Type: index.ArrayOf(index.KindString)}, it, 2, sel))
	assert.False(t, it.lastNumeric)
	assert.Equal(t, []uint32{1}, sel.ToSlice())
}

func TestEvaluate_NumericArrayColumn(t *testing.T) {
	it := &stubIterator{readerKind: index.ReaderBKD, match: bitmap.Of(7)}

	sel := bitmap.Of(7, 8)
	p := NewMatch(0, "42", MatchAny)
	col := index.Column{Name: "ids", Type: index.ArrayOf(index.KindInt32)}
	require.NoError(t, p.Evaluate(context.Background(), col, it, 9, sel))

	assert.Equal(t, []byte{42, 0, 0, 0}, it.lastValue)
	assert.True(t, it.lastNumeric)
	assert.Equal(t, []uint32{7}, sel.ToSlice())
}

func TestEvaluate_InvalidScalar(t *testing.T) {
	it := &stubIterator{readerKind: index.ReaderBKD}

	sel := bitmap.Of(0)
	p := NewMatch(0, "not-a-number", MatchAny)
	col := index.Column{Name: "ids", Type: index.ArrayOf(index.KindInt64)}
	err := p.Evaluate(context.Background(), col, it, 1, sel)

	var invalidErr *ErrInvalidScalar
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, index.KindInt64, invalidErr.Kind)

	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)

	// The parse failure happens before any read; sel is untouched.
	assert.Zero(t, it.reads)
	assert.Equal(t, []uint32{0}, sel.ToSlice())
}

func TestEvaluate_UnsupportedColumnShape(t *testing.T) {
	it := &stubIterator{readerKind: index.ReaderBKD, match: bitmap.Of(0, 1)}

	sel := bitmap.Of(0, 1)
	p := NewMatch(0, "42", MatchAny)
	col := index.Column{Name: "n", Type: index.Scalar(index.KindInt32)}
	require.NoError(t, p.Evaluate(context.Background(), col, it, 2, sel))

	// No query is issued and the selection empties.
	assert.Zero(t, it.reads)
	assert.True(t, sel.IsEmpty())
}

func TestEvaluate_ReadError(t *testing.T) {
	readErr := errors.New("read failed")
	it := &stubIterator{readerKind: index.ReaderFulltext, readErr: readErr}

	sel := bitmap.Of(0)
	err := NewMatch(0, "term", MatchAny).Evaluate(context.Background(), index.Column{Name: "c", Type: index.String()}, it, 1, sel)
	assert.ErrorIs(t, err, readErr)
	assert.Equal(t, []uint32{0}, sel.ToSlice())
}

func TestEvaluate_EndToEnd(t *testing.T) {
	ix := memindex.New(memindex.Options{
		Column: "body",
		Properties: index.Properties{
			index.PropParser:        index.ParserEnglish,
			index.PropSupportPhrase: "true",
		},
	})
	ix.AddString(10, "apache druid rocks")
	ix.AddString(11, "apache arrow flight")
	ix.AddString(12, "apache druid")
	ix.AddString(13, "unrelated text")
	ix.AddNull(14)

	col := index.Column{Name: "body", Type: index.String()}

	sel := bitmap.Of(10, 11, 12, 13, 14)
	require.NoError(t, NewMatch(0, "apache", MatchAny).Evaluate(context.Background(), col, ix, 15, sel))
	assert.Equal(t, []uint32{10, 11, 12}, sel.ToSlice())

	sel = bitmap.Of(10, 11, 12, 13, 14)
	require.NoError(t, NewMatch(0, "apache druid", MatchPhrase).Evaluate(context.Background(), col, ix, 15, sel))
	assert.Equal(t, []uint32{10, 12}, sel.ToSlice())

	sel = bitmap.Of(10, 11)
	require.NoError(t, NewMatch(0, "druid rocks", MatchAll).Evaluate(context.Background(), col, ix, 15, sel))
	assert.Equal(t, []uint32{10}, sel.ToSlice())
}
