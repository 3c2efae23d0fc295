// Package quarry provides the execution-time filtering and aggregation
// substrate of a columnar analytical engine.
//
// The two load-bearing pieces are the open-addressing hash table family in
// package hashtable, used by vectorized aggregation, join and deduplication
// operators, and the inverted-index match predicate in package predicate,
// which turns a logical text-match condition into an index query and narrows
// a caller-owned row-selection bitmap with null-safe three-valued-logic
// semantics.
//
// Supporting packages: bitmap (roaring-backed row-id sets), index (the
// consumed index-reader surface), index/memindex (an in-memory full-text
// index), index/indexcache (the shared query-result cache) and aggregate
// (partitioned hash aggregation built on the table).
package quarry
