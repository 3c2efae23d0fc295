// Package hash provides hardware-accelerated checksumming for data
// integrity.
//
// Segment payloads are protected with CRC32-Castagnoli (CRC32C),
// which Go's crc32 package computes with hardware instructions on x86
// (SSE4.2) and ARM (CRC extension). The Castagnoli polynomial detects
// all single-bit, double-bit and odd-bit errors, plus burst errors up
// to 32 bits.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
