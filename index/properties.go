package index

// Properties is the key/value build configuration of an index, recorded at
// index-build time and consulted during evaluation capability checks.
type Properties map[string]string

// Property keys.
const (
	// PropParser selects the tokenizer an index was built with.
	PropParser = "parser"
	// PropSupportPhrase records whether positional information needed for
	// phrase queries was retained at build time. Values "true"/"false".
	PropSupportPhrase = "support_phrase"
)

// Parser values.
const (
	// ParserNone indexes each value as a single untokenized term.
	ParserNone = "none"
	// ParserEnglish tokenizes on non-alphanumeric boundaries, lowercased.
	ParserEnglish = "english"
	// ParserUnicode tokenizes on unicode word boundaries, lowercased.
	ParserUnicode = "unicode"
)

// Parser returns the configured parser, defaulting to ParserNone.
func (p Properties) Parser() string {
	if v, ok := p[PropParser]; ok && v != "" {
		return v
	}
	return ParserNone
}

// SupportPhrase reports whether the index retained positions for phrase
// queries. An explicit property wins; otherwise an untokenized index
// supports phrases (each value is one term) and a tokenized one does not.
func (p Properties) SupportPhrase() bool {
	if v, ok := p[PropSupportPhrase]; ok {
		return v == "true"
	}
	return p.Parser() == ParserNone
}
