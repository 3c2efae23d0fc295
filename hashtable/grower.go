package hashtable

// Grower is the pluggable growth policy: it owns the probe geometry
// (initial slot and probe sequence) and decides when the table must grow.
//
// Erase relies on the probe sequence being linear (Next advances one slot
// with wrap-around); non-linear growers may be used with insert/find-only
// workloads.
type Grower interface {
	// BufSize returns the current number of slots.
	BufSize() uint64
	// Place returns the initial probe slot for a hash.
	Place(hash uint64) uint64
	// Next returns the probe slot following place.
	Next(place uint64) uint64
	// WillOverflow reports whether a table holding size entries has
	// exceeded the policy's load limit and must grow before inserting.
	WillOverflow(size int) bool
	// Grow advances to the next capacity. The table rebuilds afterwards.
	Grow()
}

const defaultSizeDegree = 8

// PowerOfTwoGrower is the default growth policy: power-of-two capacity,
// linear probing, growth at 50% load.
type PowerOfTwoGrower struct {
	degree uint8
}

// NewPowerOfTwoGrower creates a grower with the default initial capacity
// (256 slots).
func NewPowerOfTwoGrower() *PowerOfTwoGrower {
	return &PowerOfTwoGrower{degree: defaultSizeDegree}
}

// NewPowerOfTwoGrowerWithDegree creates a grower with 1<<degree initial
// slots. Degrees below 2 are raised to 2.
func NewPowerOfTwoGrowerWithDegree(degree uint8) *PowerOfTwoGrower {
	if degree < 2 {
		degree = 2
	}
	return &PowerOfTwoGrower{degree: degree}
}

// BufSize implements Grower.
func (g *PowerOfTwoGrower) BufSize() uint64 {
	return 1 << g.degree
}

func (g *PowerOfTwoGrower) mask() uint64 {
	return g.BufSize() - 1
}

// Place implements Grower.
func (g *PowerOfTwoGrower) Place(hash uint64) uint64 {
	return hash & g.mask()
}

// Next implements Grower.
func (g *PowerOfTwoGrower) Next(place uint64) uint64 {
	return (place + 1) & g.mask()
}

// WillOverflow implements Grower.
func (g *PowerOfTwoGrower) WillOverflow(size int) bool {
	return uint64(size) > g.BufSize()/2
}

// Grow implements Grower.
func (g *PowerOfTwoGrower) Grow() {
	// Grow faster while the table is small.
	if g.degree < 15 {
		g.degree += 2
	} else {
		g.degree++
	}
}
