package predicate

import (
	"errors"
	"fmt"

	"github.com/quarrydb/quarry/index"
)

var (
	// ErrPhraseNotSupported is returned when a phrase-family match is
	// evaluated against a fulltext index built without phrase support.
	ErrPhraseNotSupported = errors.New("phrase queries require setting support_phrase = true")
)

// ErrUnknownMatchType indicates a match kind with no inverted index
// query translation.
type ErrUnknownMatchType struct {
	MatchType MatchType
}

func (e *ErrUnknownMatchType) Error() string {
	return fmt.Sprintf("unknown match type: %d", e.MatchType)
}

// ErrInvalidScalar indicates a query value that does not parse as the
// column's element kind.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrInvalidScalar struct {
	Kind  index.Kind
	Value string
	cause error
}

func (e *ErrInvalidScalar) Error() string {
	return fmt.Sprintf("invalid %s value: %q", e.Kind, e.Value)
}

func (e *ErrInvalidScalar) Unwrap() error { return e.cause }
