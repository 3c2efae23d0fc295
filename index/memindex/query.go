package memindex

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/index"
)

// query evaluates one query against the posting lists and returns a
// fresh bitmap of matching rows.
func (ix *Index) query(value []byte, qt index.QueryType, numericArray bool) (*bitmap.Bitmap, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if numericArray {
		// Numeric elements are indexed as opaque encoded terms and
		// only support exact lookup.
		return ix.termRowsLocked(string(value)), nil
	}

	switch qt {
	case index.QueryAny:
		return ix.unionLocked(ix.tokenize(string(value))), nil
	case index.QueryAll:
		return ix.intersectLocked(ix.tokenize(string(value))), nil
	case index.QueryPhrase:
		return ix.phraseLocked(ix.tokenize(string(value)))
	case index.QueryPhrasePrefix:
		return ix.phrasePrefixLocked(ix.tokenize(string(value)))
	case index.QueryPhraseEdge:
		return ix.phraseEdgeLocked(ix.tokenize(string(value)))
	case index.QueryRegexp:
		return ix.regexpLocked(string(value))
	default:
		return nil, fmt.Errorf("memindex: unsupported query type %s", qt)
	}
}

func (ix *Index) termRowsLocked(term string) *bitmap.Bitmap {
	out := bitmap.New()
	if p, ok := ix.terms[term]; ok {
		out.Or(p.rows)
	}

	return out
}

func (ix *Index) unionLocked(tokens []string) *bitmap.Bitmap {
	out := bitmap.New()
	for _, tok := range tokens {
		if p, ok := ix.terms[tok]; ok {
			out.Or(p.rows)
		}
	}

	return out
}

func (ix *Index) intersectLocked(tokens []string) *bitmap.Bitmap {
	out := bitmap.New()
	if len(tokens) == 0 {
		return out
	}

	first, ok := ix.terms[tokens[0]]
	if !ok {
		return out
	}
	out.Or(first.rows)

	for _, tok := range tokens[1:] {
		p, ok := ix.terms[tok]
		if !ok {
			out.Clear()

			return out
		}
		out.And(p.rows)
	}

	return out
}

// phraseLocked matches rows where the tokens occur at consecutive
// positions.
func (ix *Index) phraseLocked(tokens []string) (*bitmap.Bitmap, error) {
	return ix.phraseOverLocked(tokens, nil, nil)
}

// phrasePrefixLocked matches like a phrase, with the last token
// expanded to every indexed term sharing it as a prefix.
func (ix *Index) phrasePrefixLocked(tokens []string) (*bitmap.Bitmap, error) {
	if len(tokens) == 0 {
		return bitmap.New(), nil
	}

	last := tokens[len(tokens)-1]
	lastSet := ix.expandLocked(func(term string) bool {
		return strings.HasPrefix(term, last)
	})

	return ix.phraseOverLocked(tokens, nil, lastSet)
}

// phraseEdgeLocked matches a phrase whose first token may be a suffix
// of the first matched term and whose last token may be a prefix of
// the last matched term. A single token matches as a substring.
func (ix *Index) phraseEdgeLocked(tokens []string) (*bitmap.Bitmap, error) {
	if len(tokens) == 0 {
		return bitmap.New(), nil
	}

	if len(tokens) == 1 {
		out := bitmap.New()
		for term, p := range ix.terms {
			if strings.Contains(term, tokens[0]) {
				out.Or(p.rows)
			}
		}

		return out, nil
	}

	firstSet := ix.expandLocked(func(term string) bool {
		return strings.HasSuffix(term, tokens[0])
	})
	lastSet := ix.expandLocked(func(term string) bool {
		return strings.HasPrefix(term, tokens[len(tokens)-1])
	})

	return ix.phraseOverLocked(tokens, firstSet, lastSet)
}

func (ix *Index) regexpLocked(pattern string) (*bitmap.Bitmap, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("memindex: compile regexp: %w", err)
	}

	out := bitmap.New()
	for term, p := range ix.terms {
		if re.MatchString(term) {
			out.Or(p.rows)
		}
	}

	return out, nil
}

// expandLocked collects the indexed terms matching the given test.
func (ix *Index) expandLocked(match func(string) bool) []string {
	var out []string
	for term := range ix.terms {
		if match(term) {
			out = append(out, term)
		}
	}
	slices.Sort(out)

	return out
}

// phraseOverLocked runs the positional phrase check, optionally
// substituting candidate sets for the first and last token.
func (ix *Index) phraseOverLocked(tokens []string, firstSet, lastSet []string) (*bitmap.Bitmap, error) {
	out := bitmap.New()
	if len(tokens) == 0 {
		return out, nil
	}
	if !ix.keepPositions {
		return nil, ErrPositionsNotRetained
	}

	if firstSet == nil {
		firstSet = tokens[:1]
	}
	if lastSet == nil {
		lastSet = tokens[len(tokens)-1:]
	}

	if len(tokens) == 1 {
		// First and last are the same token; candidates come from
		// whichever set was expanded.
		set := lastSet
		if len(firstSet) > 1 || (len(firstSet) == 1 && firstSet[0] != tokens[0]) {
			set = firstSet
		}
		for _, term := range set {
			if p, ok := ix.terms[term]; ok {
				out.Or(p.rows)
			}
		}

		return out, nil
	}

	middle := tokens[1 : len(tokens)-1]
	for _, first := range firstSet {
		for _, last := range lastSet {
			seq := make([]*posting, 0, len(tokens))
			ok := true
			for _, term := range append(append([]string{first}, middle...), last) {
				p, present := ix.terms[term]
				if !present {
					ok = false

					break
				}
				seq = append(seq, p)
			}
			if !ok {
				continue
			}
			ix.collectPhraseRowsLocked(seq, out)
		}
	}

	return out, nil
}

// collectPhraseRowsLocked adds every row where the posting sequence
// occurs at consecutive positions.
func (ix *Index) collectPhraseRowsLocked(seq []*posting, out *bitmap.Bitmap) {
	rows := bitmap.New()
	rows.Or(seq[0].rows)
	for _, p := range seq[1:] {
		rows.And(p.rows)
	}

	rows.ForEach(func(row uint32) bool {
		for _, start := range seq[0].positions[row] {
			matched := true
			for i, p := range seq[1:] {
				if !slices.Contains(p.positions[row], start+uint32(i)+1) {
					matched = false

					break
				}
			}
			if matched {
				out.Add(row)

				break
			}
		}

		return true
	})
	bitmap.Put(rows)
}
