package memindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
)

func fulltextOptions() Options {
	return Options{
		SegmentID: 1,
		Column:    "body",
		Properties: index.Properties{
			index.PropParser:        index.ParserEnglish,
			index.PropSupportPhrase: "true",
		},
	}
}

func queryRows(t *testing.T, ix *Index, value string, qt index.QueryType) []uint32 {
	t.Helper()

	out := bitmap.New()
	err := ix.ReadFromInvertedIndex("body", []byte(value), qt, ix.NumRows(), out, false)
	require.NoError(t, err)

	return out.ToSlice()
}

func TestIndex_AnyAll(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(10, "apache druid rocks")
	ix.AddString(11, "apache arrow")
	ix.AddString(12, "apache druid")
	ix.AddString(13, "plain text")

	assert.Equal(t, []uint32{10, 11, 12}, queryRows(t, ix, "apache", index.QueryAny))
	assert.Equal(t, []uint32{10, 12, 13}, queryRows(t, ix, "druid text", index.QueryAny))
	assert.Equal(t, []uint32{10, 12}, queryRows(t, ix, "apache druid", index.QueryAll))
	assert.Empty(t, queryRows(t, ix, "missing", index.QueryAny))
	assert.Empty(t, queryRows(t, ix, "apache missing", index.QueryAll))
}

func TestIndex_Phrase(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "the quick brown fox")
	ix.AddString(1, "brown the quick")
	ix.AddString(2, "quick brown shoes")

	assert.Equal(t, []uint32{0, 2}, queryRows(t, ix, "quick brown", index.QueryPhrase))
	assert.Equal(t, []uint32{0}, queryRows(t, ix, "quick brown fox", index.QueryPhrase))
	assert.Empty(t, queryRows(t, ix, "fox quick", index.QueryPhrase))
}

func TestIndex_PhraseAcrossArrayElements(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddStringArray(0, []string{"hello world", "goodbye moon"})

	// Tokens from distinct elements never form a phrase.
	assert.Equal(t, []uint32{0}, queryRows(t, ix, "hello world", index.QueryPhrase))
	assert.Empty(t, queryRows(t, ix, "world goodbye", index.QueryPhrase))
}

func TestIndex_PhrasePrefix(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "distributed query engine")
	ix.AddString(1, "distributed queue")
	ix.AddString(2, "central query engine")

	assert.Equal(t, []uint32{0, 1}, queryRows(t, ix, "distributed qu", index.QueryPhrasePrefix))
	assert.Equal(t, []uint32{0}, queryRows(t, ix, "distributed query", index.QueryPhrasePrefix))
}

func TestIndex_PhraseEdge(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "blackbird singing")
	ix.AddString(1, "bluebird flying")
	ix.AddString(2, "bird watching")

	// Single token matches as a substring of any term.
	assert.Equal(t, []uint32{0, 1, 2}, queryRows(t, ix, "bird", index.QueryPhraseEdge))

	// First token suffix-matched, last prefix-matched.
	assert.Equal(t, []uint32{0}, queryRows(t, ix, "bird sing", index.QueryPhraseEdge))
}

func TestIndex_Regexp(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "error code 500")
	ix.AddString(1, "error code 404")
	ix.AddString(2, "all good")

	assert.Equal(t, []uint32{0, 1}, queryRows(t, ix, "^(4|5)0[0-9]$", index.QueryRegexp))

	out := bitmap.New()
	err := ix.ReadFromInvertedIndex("body", []byte("("), index.QueryRegexp, 3, out, false)
	assert.Error(t, err)
}

func TestIndex_UntokenizedParser(t *testing.T) {
	ix := New(Options{Column: "tag", Properties: index.Properties{}})

	require.Equal(t, index.ReaderStringType, ix.ReaderKind())

	ix.AddString(0, "Exact Value")
	ix.AddString(1, "exact value")

	out := bitmap.New()
	require.NoError(t, ix.ReadFromInvertedIndex("tag", []byte("Exact Value"), index.QueryAny, 2, out, false))
	assert.Equal(t, []uint32{0}, out.ToSlice())
}

func TestIndex_NumericTerms(t *testing.T) {
	ix := New(Options{Column: "ids", Properties: index.Properties{}})

	ix.AddNumericTerm(0, []byte{42, 0, 0, 0})
	ix.AddNumericTerm(1, []byte{7, 0, 0, 0})
	ix.AddNumericTerm(1, []byte{42, 0, 0, 0})

	out := bitmap.New()
	require.NoError(t, ix.ReadFromInvertedIndex("ids", []byte{42, 0, 0, 0}, index.QueryAny, 2, out, true))
	assert.Equal(t, []uint32{0, 1}, out.ToSlice())
}

func TestIndex_Nulls(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "value")
	ix.AddNull(1)
	ix.AddString(2, "value")

	require.True(t, ix.HasNull())

	h, err := ix.ReadNullBitmap()
	require.NoError(t, err)
	defer h.Release()

	assert.Equal(t, []uint32{1}, h.Bitmap().ToSlice())
	assert.Equal(t, uint32(3), ix.NumRows())
}

func TestIndex_FieldMismatch(t *testing.T) {
	ix := New(fulltextOptions())
	ix.AddString(0, "value")

	out := bitmap.New()
	err := ix.ReadFromInvertedIndex("other", []byte("value"), index.QueryAny, 1, out, false)
	assert.ErrorIs(t, err, ErrFieldMismatch)
}

func TestIndex_PhraseWithoutPositions(t *testing.T) {
	ix := New(Options{
		Column: "body",
		Properties: index.Properties{
			index.PropParser: index.ParserEnglish,
		},
	})
	ix.AddString(0, "quick brown")

	out := bitmap.New()
	err := ix.ReadFromInvertedIndex("body", []byte("quick brown"), index.QueryPhrase, 1, out, false)
	assert.ErrorIs(t, err, ErrPositionsNotRetained)
}
