package hashtable

// Map exposes map-style access on top of the table core. It adds no
// removal or shrink operations; aggregation operators only ever insert,
// accumulate and drain.
type Map[K comparable, V any, C any, PC CellPtr[K, V, C]] struct {
	Table[K, V, C, PC]
}

// NewMap creates a map with plain cells and the default hasher and growth
// policy.
func NewMap[K comparable, V any]() *Map[K, V, Cell[K, V], *Cell[K, V]] {
	return NewMapWith[K, V, Cell[K, V]](NewSeededHasher[K](), nil)
}

// NewCachedHashMap creates a map whose cells store the key hash. Prefer it
// for long variable-length keys (strings) that are probed repeatedly.
func NewCachedHashMap[K comparable, V any]() *Map[K, V, CachedHashCell[K, V], *CachedHashCell[K, V]] {
	return NewMapWith[K, V, CachedHashCell[K, V]](NewSeededHasher[K](), nil)
}

// NewMapWith creates a map with an explicit cell variant, hasher and
// growth policy. A nil grower gets the default power-of-two policy.
func NewMapWith[K comparable, V any, C any, PC CellPtr[K, V, C]](hasher Hasher[K], grower Grower) *Map[K, V, C, PC] {
	return &Map[K, V, C, PC]{
		Table: *NewTable[K, V, C, PC](hasher, grower),
	}
}

// GetOrInsertDefault returns a pointer to the mapped value for key,
// inserting a default-constructed value if the key is absent. The default
// construction happens exactly once per distinct key: repeated calls with
// a present key return the existing value untouched, which is what makes
// `*m.GetOrInsertDefault(k)++` accumulation correct.
//
// The pointer is valid until the next insert.
func (m *Map[K, V, C, PC]) GetOrInsertDefault(key K) *V {
	cell, _ := m.InsertOrLocate(key)
	return cell.Mapped()
}

// Get returns the mapped value for key.
func (m *Map[K, V, C, PC]) Get(key K) (V, bool) {
	cell, ok := m.Find(key)
	if !ok {
		var zero V
		return zero, false
	}
	return *cell.Mapped(), true
}

// ForEachValue applies fn to the mapped component of every live cell in
// slot order. fn may mutate the value through the pointer; mutating the
// key set during traversal is not allowed.
func (m *Map[K, V, C, PC]) ForEachValue(fn func(*V)) {
	m.ForEachCell(func(cell PC) {
		fn(cell.Mapped())
	})
}

// ForEach applies fn to every key/value pair in slot order.
func (m *Map[K, V, C, PC]) ForEach(fn func(K, *V)) {
	m.ForEachCell(func(cell PC) {
		fn(cell.Key(), cell.Mapped())
	})
}
