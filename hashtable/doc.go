// Package hashtable implements the open-addressing hash table family used
// by the vectorized aggregation, join and deduplication operators.
//
// The design follows the classic relocatable-cell layout: all entries live
// in a flat slot array and are moved by plain value copy during resize, so
// Key and Mapped types must not carry identity tied to their own address
// (no self-pointers). Any pointer obtained from the table (Mapped, cell) is
// valid only until the next insert.
//
// The all-zero key is a real, insertable key. It is held in a dedicated
// slot beside the array rather than encoded as a reserved bit pattern, and
// slot emptiness is tracked by an explicit occupancy bitset, so ordinary
// probing never has to disambiguate "empty" from "zero key".
//
// Two cell variants implement one capability surface: Cell recomputes the
// key hash on demand, CachedHashCell stores the hash beside the pair at
// insertion time, trading one word per cell for cheap rejection on probe
// and no rehashing during resize. The variant is chosen by the
// instantiating call site through the generic parameters.
//
// Tables are not synchronized. Concurrent operators each own a private
// table; nothing here is safe for shared mutation.
package hashtable
