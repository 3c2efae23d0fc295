// Package memindex provides an in-memory inverted index over a single
// column. It tokenizes row values according to the index properties,
// keeps per-term row bitmaps (with token positions when phrase support
// is enabled), and serves the full query surface expected by match
// predicates: any, all, phrase, phrase prefix, phrase edge and regexp.
//
// Segments can be written to and loaded from a stream through the
// compressed block codec, with loads flowing through the resource
// controller's I/O limiter.
package memindex
