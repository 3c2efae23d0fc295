package hashtable

// CellPtr is the capability surface shared by all cell variants. It is a
// pointer constraint: the table stores cells by value in its slot array
// and addresses them through this interface, so a cell type is any struct
// whose pointer implements these methods.
type CellPtr[K comparable, V any, C any] interface {
	*C
	// Init writes the key (and, for hash-carrying cells, the hash) into a
	// freshly claimed slot and resets the mapped value to its zero value.
	// Called exactly once per insertion.
	Init(key K, hash uint64)
	// Key returns the cell's key.
	Key() K
	// Mapped returns a pointer to the cell's mapped value.
	Mapped() *V
	// KeyEquals reports whether the cell holds key. Hash-carrying cells
	// use hash for cheap rejection before comparing keys.
	KeyEquals(key K, hash uint64) bool
	// HashWith returns the cell's key hash, either recomputed via h or
	// taken from the stored word.
	HashWith(h Hasher[K]) uint64
}

// Cell is the plain key/value slot. Equality is by key alone and the hash
// is recomputed whenever the table needs it.
type Cell[K comparable, V any] struct {
	key    K
	mapped V
}

// Init implements CellPtr.
func (c *Cell[K, V]) Init(key K, _ uint64) {
	var zero V
	c.key = key
	// Slots are recycled after erase; the mapped value must come up
	// default-constructed on every fresh insertion.
	c.mapped = zero
}

// Key implements CellPtr.
func (c *Cell[K, V]) Key() K { return c.key }

// Mapped implements CellPtr.
func (c *Cell[K, V]) Mapped() *V { return &c.mapped }

// KeyEquals implements CellPtr. The hash is ignored.
func (c *Cell[K, V]) KeyEquals(key K, _ uint64) bool {
	return c.key == key
}

// HashWith implements CellPtr.
func (c *Cell[K, V]) HashWith(h Hasher[K]) uint64 {
	return h.Hash(c.key)
}

// CachedHashCell stores the key hash beside the pair. Use it when hashing
// is expensive relative to equality (long string keys probed repeatedly):
// lookups reject on the stored word before comparing keys, and resize
// relocation never rehashes.
//
// The stored hash is set once, at insertion, and must stay consistent with
// the key for the cell's lifetime.
type CachedHashCell[K comparable, V any] struct {
	key    K
	mapped V
	hash   uint64
}

// Init implements CellPtr.
func (c *CachedHashCell[K, V]) Init(key K, hash uint64) {
	var zero V
	c.key = key
	c.mapped = zero
	c.hash = hash
}

// Key implements CellPtr.
func (c *CachedHashCell[K, V]) Key() K { return c.key }

// Mapped implements CellPtr.
func (c *CachedHashCell[K, V]) Mapped() *V { return &c.mapped }

// KeyEquals implements CellPtr: stored-hash rejection first, then full
// key comparison.
func (c *CachedHashCell[K, V]) KeyEquals(key K, hash uint64) bool {
	return c.hash == hash && c.key == key
}

// HashWith implements CellPtr. The hasher is not consulted.
func (c *CachedHashCell[K, V]) HashWith(_ Hasher[K]) uint64 {
	return c.hash
}
