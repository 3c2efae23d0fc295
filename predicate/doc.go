// Package predicate evaluates match predicates against inverted
// indexes. A match predicate pairs a column with a query value and a
// match kind (any, all, phrase and its variants, regexp); evaluation
// narrows a selection bitmap to the rows the index reports as
// matching, with null rows excluded first.
package predicate
