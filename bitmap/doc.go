// Package bitmap provides the compressed row-id set used throughout
// predicate evaluation: selection bitmaps, index match bitmaps and null
// bitmaps are all values of this type.
//
// The representation is a 32-bit Roaring Bitmap, so serialization is the
// standard portable roaring format and can be shared across processes.
package bitmap
