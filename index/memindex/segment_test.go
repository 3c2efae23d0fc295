package memindex

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
	"github.com/quarrydb/quarry/index/indexcache"
	"github.com/quarrydb/quarry/internal/blockcodec"
	"github.com/quarrydb/quarry/internal/resource"
	"github.com/quarrydb/quarry/testutil"
)

func TestSegment_RoundTrip(t *testing.T) {
	for _, codec := range []blockcodec.Type{blockcodec.None, blockcodec.LZ4, blockcodec.ZSTD} {
		t.Run(codec.String(), func(t *testing.T) {
			opts := fulltextOptions()
			opts.Compression = codec

			ix := New(opts)
			ix.AddString(0, "apache druid rocks")
			ix.AddString(1, "apache arrow")
			ix.AddNull(2)
			ix.AddString(3, "druid again")

			var buf bytes.Buffer
			_, err := ix.WriteTo(&buf)
			require.NoError(t, err)

			loaded, err := Load(context.Background(), &buf, Options{SegmentID: 1})
			require.NoError(t, err)

			assert.Equal(t, "body", loaded.opts.Column)
			assert.Equal(t, uint32(4), loaded.NumRows())
			assert.Equal(t, index.ReaderFulltext, loaded.ReaderKind())
			assert.True(t, loaded.HasNull())
			assert.True(t, loaded.Properties().SupportPhrase())

			assert.Equal(t, []uint32{0, 1}, queryRows(t, loaded, "apache", index.QueryAny))
			assert.Equal(t, []uint32{0}, queryRows(t, loaded, "apache druid", index.QueryPhrase))
		})
	}
}

func TestSegment_LoadThroughController(t *testing.T) {
	opts := fulltextOptions()
	opts.Compression = blockcodec.ZSTD

	ix := New(opts)
	for row := range uint32(500) {
		ix.AddString(row, "searchable text with several shared words")
	}

	var buf bytes.Buffer
	_, err := ix.WriteTo(&buf)
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 64 << 20})
	loaded, err := Load(context.Background(), &buf, Options{Resources: rc})
	require.NoError(t, err)
	assert.Equal(t, uint32(500), loaded.NumRows())
}

func TestDefaultOptions(t *testing.T) {
	ix := New(DefaultOptions())

	assert.Equal(t, index.ReaderStringType, ix.ReaderKind())
	assert.True(t, ix.Properties().SupportPhrase())
}

func TestSegment_RandomCorpusRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(7)
	docs := rng.Sentences(2000, 4, 12)

	opts := fulltextOptions()
	opts.Compression = blockcodec.LZ4

	ix := New(opts)
	for row, doc := range docs {
		ix.AddString(uint32(row), doc)
	}

	var buf bytes.Buffer
	_, err := ix.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := Load(context.Background(), &buf, Options{})
	require.NoError(t, err)

	for _, term := range []string{"query", "apache", "posting"} {
		assert.Equal(t, queryRows(t, ix, term, index.QueryAny), queryRows(t, loaded, term, index.QueryAny))
	}
	assert.Equal(t,
		queryRows(t, ix, "query engine", index.QueryPhrase),
		queryRows(t, loaded, "query engine", index.QueryPhrase))
}

func TestSegment_Corrupt(t *testing.T) {
	_, err := Load(context.Background(), bytes.NewReader([]byte("garbage")), Options{})
	assert.ErrorIs(t, err, ErrBadSegment)

	ix := New(fulltextOptions())
	ix.AddString(0, "value")

	var buf bytes.Buffer
	_, err = ix.WriteTo(&buf)
	require.NoError(t, err)

	truncated := buf.Bytes()[:buf.Len()-3]
	_, err = Load(context.Background(), bytes.NewReader(truncated), Options{})
	assert.Error(t, err)

	// A flipped payload byte fails the checksum.
	flipped := bytes.Clone(buf.Bytes())
	flipped[len(flipped)-1] ^= 0xff
	_, err = Load(context.Background(), bytes.NewReader(flipped), Options{})
	assert.ErrorIs(t, err, ErrBadSegment)
}

func TestIndex_CachedQueries(t *testing.T) {
	cache := indexcache.New(1<<20, nil)

	opts := fulltextOptions()
	opts.Cache = cache

	ix := New(opts)
	ix.AddString(0, "apache druid")
	ix.AddNull(1)

	out := bitmap.New()
	require.NoError(t, ix.ReadFromInvertedIndex("body", []byte("apache"), index.QueryAny, 2, out, false))
	require.NoError(t, ix.ReadFromInvertedIndex("body", []byte("apache"), index.QueryAny, 2, out, false))

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	h, err := ix.ReadNullBitmap()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, h.Bitmap().ToSlice())
	h.Release()
}
