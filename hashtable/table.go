package hashtable

// Table is the open-addressing core. All ordinary entries live in a flat
// slot array; the all-zero key, when present, lives in a dedicated slot
// beside it and never participates in probing.
//
// K and V must be relocatable: cells are moved by value copy during resize
// and erase compaction, so neither type may depend on its own address.
// Pointers returned by Find/InsertOrLocate are valid until the next insert.
type Table[K comparable, V any, C any, PC CellPtr[K, V, C]] struct {
	hasher Hasher[K]
	grower Grower

	cells    []C
	occupied []uint64 // one bit per slot; clear bit = empty slot
	size     int      // live entries, zero-key slot included

	zeroUsed bool
	zeroCell C
}

// NewTable creates a table with the given hasher and growth policy.
// A nil grower gets the default power-of-two policy.
func NewTable[K comparable, V any, C any, PC CellPtr[K, V, C]](hasher Hasher[K], grower Grower) *Table[K, V, C, PC] {
	if grower == nil {
		grower = NewPowerOfTwoGrower()
	}
	n := grower.BufSize()
	return &Table[K, V, C, PC]{
		hasher:   hasher,
		grower:   grower,
		cells:    make([]C, n),
		occupied: make([]uint64, (n+63)/64),
	}
}

// Len returns the number of live entries.
func (t *Table[K, V, C, PC]) Len() int {
	return t.size
}

func (t *Table[K, V, C, PC]) isOccupied(pos uint64) bool {
	return t.occupied[pos/64]&(uint64(1)<<(pos%64)) != 0
}

func (t *Table[K, V, C, PC]) setOccupied(pos uint64) {
	t.occupied[pos/64] |= uint64(1) << (pos % 64)
}

func (t *Table[K, V, C, PC]) clearOccupied(pos uint64) {
	t.occupied[pos/64] &^= uint64(1) << (pos % 64)
}

// findSlot probes for key. Returns the matching slot, or the first empty
// slot of the probe chain when the key is absent.
func (t *Table[K, V, C, PC]) findSlot(key K, hash uint64) (pos uint64, found bool) {
	pos = t.grower.Place(hash)
	for t.isOccupied(pos) {
		if PC(&t.cells[pos]).KeyEquals(key, hash) {
			return pos, true
		}
		pos = t.grower.Next(pos)
	}
	return pos, false
}

// Find returns the cell holding key, or nil when absent.
func (t *Table[K, V, C, PC]) Find(key K) (PC, bool) {
	var zeroK K
	if key == zeroK {
		if t.zeroUsed {
			return &t.zeroCell, true
		}
		return nil, false
	}

	pos, found := t.findSlot(key, t.hasher.Hash(key))
	if !found {
		return nil, false
	}
	return &t.cells[pos], true
}

// InsertOrLocate locates the cell with an equal key, or claims a slot and
// writes the key into it, reporting whether an insertion occurred. The
// mapped value of a newly claimed cell is default-constructed.
func (t *Table[K, V, C, PC]) InsertOrLocate(key K) (PC, bool) {
	var zeroK K
	if key == zeroK {
		if t.zeroUsed {
			return &t.zeroCell, false
		}
		t.zeroUsed = true
		t.size++
		PC(&t.zeroCell).Init(key, t.hasher.Hash(key))
		return &t.zeroCell, true
	}

	if t.grower.WillOverflow(t.size + 1) {
		t.resize()
	}

	hash := t.hasher.Hash(key)
	pos, found := t.findSlot(key, hash)
	if found {
		return &t.cells[pos], false
	}

	PC(&t.cells[pos]).Init(key, hash)
	t.setOccupied(pos)
	t.size++
	return &t.cells[pos], true
}

// Erase removes key from the table, reporting whether it was present.
// Uses backward-shift compaction, so no tombstones accumulate. Requires a
// linear probe sequence (see Grower).
func (t *Table[K, V, C, PC]) Erase(key K) bool {
	var zeroK K
	if key == zeroK {
		if !t.zeroUsed {
			return false
		}
		t.zeroUsed = false
		t.zeroCell = *new(C)
		t.size--
		return true
	}

	hash := t.hasher.Hash(key)
	pos, found := t.findSlot(key, hash)
	if !found {
		return false
	}

	n := t.grower.BufSize()
	hole := pos
	t.clearOccupied(hole)
	t.size--

	// Shift the rest of the probe chain back over the hole: an entry moves
	// when its ideal slot does not lie strictly between the hole and its
	// current position (cyclically), i.e. leaving it in place would break
	// its probe chain at the hole.
	pos = t.grower.Next(pos)
	for t.isOccupied(pos) {
		ideal := t.grower.Place(PC(&t.cells[pos]).HashWith(t.hasher))
		if (pos+n-ideal)%n >= (pos+n-hole)%n {
			t.cells[hole] = t.cells[pos] // relocation by value copy
			t.setOccupied(hole)
			t.clearOccupied(pos)
			hole = pos
		}
		pos = t.grower.Next(pos)
	}

	t.cells[hole] = *new(C)
	return true
}

// resize grows the slot array and relocates every occupied cell. The
// zero-key slot is untouched: it never competes for array slots. Cached
// hash cells relocate without rehashing.
func (t *Table[K, V, C, PC]) resize() {
	oldCells := t.cells
	oldOccupied := t.occupied

	t.grower.Grow()
	n := t.grower.BufSize()
	t.cells = make([]C, n)
	t.occupied = make([]uint64, (n+63)/64)

	for i := range oldCells {
		pos := uint64(i)
		if oldOccupied[pos/64]&(uint64(1)<<(pos%64)) == 0 {
			continue
		}
		hash := PC(&oldCells[i]).HashWith(t.hasher)
		dst := t.grower.Place(hash)
		for t.isOccupied(dst) {
			dst = t.grower.Next(dst)
		}
		t.cells[dst] = oldCells[i] // bulk relocation: plain value copy
		t.setOccupied(dst)
	}
}

// ForEachCell applies fn to every live cell: the zero-key slot first, then
// array slots in physical order. The order is not sorted and not stable
// across resizes. Mutating the key set during traversal is not allowed.
func (t *Table[K, V, C, PC]) ForEachCell(fn func(PC)) {
	if t.zeroUsed {
		fn(&t.zeroCell)
	}
	for i := range t.cells {
		if t.isOccupied(uint64(i)) {
			fn(&t.cells[i])
		}
	}
}

// BufSize returns the current slot-array capacity. Exposed for growth
// policy tests and operator memory accounting.
func (t *Table[K, V, C, PC]) BufSize() uint64 {
	return t.grower.BufSize()
}
