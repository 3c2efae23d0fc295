package predicate

import (
	"context"
	"unsafe"

	"github.com/quarrydb/quarry"
	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
)

// MatchType identifies the kind of match a predicate performs.
type MatchType uint8

const (
	// MatchAny selects rows containing any query token.
	MatchAny MatchType = iota
	// MatchAll selects rows containing every query token.
	MatchAll
	// MatchPhrase selects rows containing the tokens as a phrase.
	MatchPhrase
	// MatchPhrasePrefix is a phrase whose last token is a prefix.
	MatchPhrasePrefix
	// MatchRegexp selects rows with a term matching the pattern.
	MatchRegexp
	// MatchPhraseEdge is a phrase with loose first and last tokens.
	MatchPhraseEdge
)

func (m MatchType) String() string {
	switch m {
	case MatchAny:
		return "match_any"
	case MatchAll:
		return "match_all"
	case MatchPhrase:
		return "match_phrase"
	case MatchPhrasePrefix:
		return "match_phrase_prefix"
	case MatchRegexp:
		return "match_regexp"
	case MatchPhraseEdge:
		return "match_phrase_edge"
	default:
		return "match_unknown"
	}
}

// QueryType translates the match kind into the inverted index query
// kind issued against the reader.
func (m MatchType) QueryType() (index.QueryType, error) {
	switch m {
	case MatchAny:
		return index.QueryAny, nil
	case MatchAll:
		return index.QueryAll, nil
	case MatchPhrase:
		return index.QueryPhrase, nil
	case MatchPhrasePrefix:
		return index.QueryPhrasePrefix, nil
	case MatchRegexp:
		return index.QueryRegexp, nil
	case MatchPhraseEdge:
		return index.QueryPhraseEdge, nil
	default:
		return index.QueryUnknown, &ErrUnknownMatchType{MatchType: m}
	}
}

// isPhrase reports whether the match kind needs token positions.
func (m MatchType) isPhrase() bool {
	return m == MatchPhrase || m == MatchPhrasePrefix || m == MatchPhraseEdge
}

// MatchPredicate narrows a row selection to the rows of one column
// matching a query value through that column's inverted index.
type MatchPredicate struct {
	columnID  uint32
	value     string
	matchType MatchType
	logger    *quarry.Logger
}

// NewMatch returns a match predicate over the given column.
func NewMatch(columnID uint32, value string, matchType MatchType) *MatchPredicate {
	return &MatchPredicate{
		columnID:  columnID,
		value:     value,
		matchType: matchType,
		logger:    quarry.NoopLogger(),
	}
}

// WithLogger sets the logger used for evaluation events.
func (p *MatchPredicate) WithLogger(logger *quarry.Logger) *MatchPredicate {
	if logger != nil {
		p.logger = logger
	}

	return p
}

// ColumnID returns the identifier of the predicated column.
func (p *MatchPredicate) ColumnID() uint32 { return p.columnID }

// Value returns the query value.
func (p *MatchPredicate) Value() string { return p.value }

// MatchType returns the match kind.
func (p *MatchPredicate) MatchType() MatchType { return p.matchType }

// Evaluate narrows sel to the matching rows of col. A nil iterator
// leaves sel untouched. Null rows are removed from sel before the
// match is applied.
func (p *MatchPredicate) Evaluate(ctx context.Context, col index.Column, it index.Iterator, numRows uint32, sel *bitmap.Bitmap) error {
	if it == nil {
		return nil
	}

	if err := p.checkEvaluate(it); err != nil {
		return err
	}

	qt, err := p.matchType.QueryType()
	if err != nil {
		return err
	}

	match := bitmap.Get()
	defer bitmap.Put(match)

	typ := col.Type
	switch {
	case typ.Kind.IsString(), typ.Kind == index.KindArray && typ.Elem.IsString():
		if err := it.ReadFromInvertedIndex(col.Name, stringBytes(p.value), qt, numRows, match, false); err != nil {
			p.logger.LogEvaluate(ctx, col.Name, numRows, 0, err)

			return err
		}
	case typ.Kind == index.KindArray && typ.Elem.IsNumeric():
		buf := make([]byte, typ.Elem.Width())
		if err := encodeScalar(buf, typ.Elem, p.value); err != nil {
			return err
		}
		if err := it.ReadFromInvertedIndex(col.Name, buf, qt, numRows, match, true); err != nil {
			p.logger.LogEvaluate(ctx, col.Name, numRows, 0, err)

			return err
		}
	default:
		// No index query for this column shape. The empty match
		// empties the selection below.
		p.logger.DebugContext(ctx, "column shape not indexable",
			"column", col.Name,
			"kind", typ.Kind.String(),
		)
	}

	if it.HasNull() {
		nulls, err := it.ReadNullBitmap()
		if err != nil {
			return err
		}
		defer nulls.Release()

		if nb := nulls.Bitmap(); nb != nil {
			sel.AndNot(nb)
		}
	}

	sel.And(match)
	p.logger.LogEvaluate(ctx, col.Name, numRows, sel.Cardinality(), nil)

	return nil
}

// checkEvaluate rejects phrase-family matches against fulltext
// readers built without phrase support, before any read is issued.
func (p *MatchPredicate) checkEvaluate(it index.Iterator) error {
	if p.matchType.isPhrase() &&
		it.ReaderKind() == index.ReaderFulltext &&
		!it.Properties().SupportPhrase() {
		return ErrPhraseNotSupported
	}

	return nil
}

// stringBytes returns a read-only byte view of s without copying.
func stringBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}

	return unsafe.Slice(unsafe.StringData(s), len(s))
}
