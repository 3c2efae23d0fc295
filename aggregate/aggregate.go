package aggregate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quarrydb/quarry/hashtable"
)

// ErrLengthMismatch is returned when keys and values have different
// lengths.
var ErrLengthMismatch = errors.New("aggregate: keys and values length mismatch")

// GroupState holds the accumulated measures of one group.
type GroupState struct {
	Count uint64
	Sum   float64
}

// Group pairs a key with its accumulated state.
type Group[K comparable] struct {
	Key   K
	State GroupState
}

// Aggregator accumulates grouped counts and sums. It is not
// synchronized; partitioned execution runs one per worker and merges.
type Aggregator[K comparable] struct {
	groups *hashtable.Map[K, GroupState, hashtable.CachedHashCell[K, GroupState], *hashtable.CachedHashCell[K, GroupState]]
}

// New returns an empty aggregator.
func New[K comparable]() *Aggregator[K] {
	return &Aggregator[K]{
		groups: hashtable.NewCachedHashMap[K, GroupState](),
	}
}

// Accumulate folds a batch into the aggregator. A nil values slice
// counts occurrences only; otherwise values[i] is summed into the
// group of keys[i].
func (a *Aggregator[K]) Accumulate(keys []K, values []float64) error {
	if values != nil && len(values) != len(keys) {
		return fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, len(keys), len(values))
	}

	for i, key := range keys {
		state := a.groups.GetOrInsertDefault(key)
		state.Count++
		if values != nil {
			state.Sum += values[i]
		}
	}

	return nil
}

// Merge folds other into a. Other is left unchanged.
func (a *Aggregator[K]) Merge(other *Aggregator[K]) {
	other.groups.ForEach(func(key K, state *GroupState) {
		dst := a.groups.GetOrInsertDefault(key)
		dst.Count += state.Count
		dst.Sum += state.Sum
	})
}

// NumGroups returns the number of distinct keys seen.
func (a *Aggregator[K]) NumGroups() uint64 {
	return uint64(a.groups.Len())
}

// TotalCount returns the number of accumulated input rows across all
// groups.
func (a *Aggregator[K]) TotalCount() uint64 {
	var total uint64
	a.groups.ForEachValue(func(state *GroupState) {
		total += state.Count
	})

	return total
}

// Get returns the state of one group.
func (a *Aggregator[K]) Get(key K) (GroupState, bool) {
	return a.groups.Get(key)
}

// Groups returns every group. Order is unspecified.
func (a *Aggregator[K]) Groups() []Group[K] {
	out := make([]Group[K], 0, a.groups.Len())
	a.groups.ForEach(func(key K, state *GroupState) {
		out = append(out, Group[K]{Key: key, State: *state})
	})

	return out
}

// Options configure partitioned execution.
type Options struct {
	// Parallelism caps concurrent workers. Zero means one worker per
	// partition.
	Parallelism int
}

// Run aggregates the partitions in parallel and merges the per-worker
// results. Values may be nil for count-only aggregation; otherwise it
// must have one batch per partition.
func Run[K comparable](ctx context.Context, keys [][]K, values [][]float64, opts Options) (*Aggregator[K], error) {
	if values != nil && len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d key partitions, %d value partitions", ErrLengthMismatch, len(keys), len(values))
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	workers := make([]*Aggregator[K], len(keys))
	for i, part := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			agg := New[K]()
			var vals []float64
			if values != nil {
				vals = values[i]
			}
			if err := agg.Accumulate(part, vals); err != nil {
				return err
			}
			workers[i] = agg

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := New[K]()
	for _, agg := range workers {
		merged.Merge(agg)
	}

	return merged, nil
}
