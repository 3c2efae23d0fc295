// Package indexcache implements the process-wide query-result cache for
// inverted index reads. Posting-list and null bitmaps are cached per
// (segment, column, query) key and handed out through pinned Handles:
// acquire a handle, read the shared bitmap through it, release on every
// exit path. Cached bitmaps are read-only; callers that need to mutate
// must Clone.
package indexcache

import (
	"container/list"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/quarrydb/quarry/bitmap"
	"github.com/quarrydb/quarry/internal/resource"
)

// KeyKind separates key spaces within one cache.
type KeyKind uint8

const (
	// KindQuery keys a posting-list query result.
	KindQuery KeyKind = iota
	// KindNullBitmap keys a column's null-row bitmap.
	KindNullBitmap
)

// Key identifies one cached bitmap. It must be stable across processes.
type Key struct {
	SegmentID uint64
	Column    string
	Kind      KeyKind
	QueryType uint8
	Term      string
}

func (k Key) flightKey() string {
	return strconv.FormatUint(k.SegmentID, 16) + "\x00" + k.Column + "\x00" +
		string([]byte{byte(k.Kind), k.QueryType}) + "\x00" + k.Term
}

type entry struct {
	key     Key
	bm      *bitmap.Bitmap
	size    int64
	pins    int32
	evicted bool
	cached  bool // false when admission was denied; accounting skipped
}

// Handle pins a cached bitmap. Release must be called on every exit path;
// releasing twice is safe.
type Handle struct {
	c       *Cache
	e       *entry
	release sync.Once
}

// Bitmap returns the pinned bitmap. The bitmap is shared and read-only.
func (h *Handle) Bitmap() *bitmap.Bitmap {
	if h == nil || h.e == nil {
		return nil
	}
	return h.e.bm
}

// Release unpins the handle. Idempotent.
func (h *Handle) Release() {
	if h == nil || h.e == nil || h.c == nil {
		return
	}
	h.release.Do(func() {
		h.c.unpin(h.e)
	})
}

// NewUnmanagedHandle wraps a bitmap in a handle bound to no cache, for
// readers operating without a shared cache. Release is a no-op.
func NewUnmanagedHandle(bm *bitmap.Bitmap) *Handle {
	return &Handle{e: &entry{bm: bm}}
}

// Cache is an LRU over query-result bitmaps with byte-size accounting
// against a shared resource controller and singleflight load dedup.
// Safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller

	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache with the given capacity in bytes. If rc is non-nil
// it is charged for cached bytes and may deny admission.
func New(capacity int64, rc *resource.Controller) *Cache {
	return &Cache{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// GetOrLoad returns a pinned handle for key, invoking load on a miss.
// Concurrent loads of the same key are deduplicated; every caller gets its
// own handle. The loaded bitmap is owned by the cache afterwards.
func (c *Cache) GetOrLoad(key Key, load func() (*bitmap.Bitmap, error)) (*Handle, error) {
	if h := c.getPinned(key); h != nil {
		c.hits.Add(1)
		return h, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key.flightKey(), func() (any, error) {
		// Re-check: a concurrent flight may have inserted meanwhile.
		if e := c.lookup(key); e != nil {
			return e, nil
		}
		bm, err := load()
		if err != nil {
			return nil, err
		}
		return c.insert(key, bm), nil
	})
	if err != nil {
		return nil, err
	}

	e := v.(*entry)
	return c.pin(e), nil
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// SizeBytes returns the accounted size of cached bitmaps.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *Cache) getPinned(key Key) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil
	}
	c.evictList.MoveToFront(el)
	e := el.Value.(*entry)
	e.pins++
	return &Handle{c: c, e: e}
}

func (c *Cache) lookup(key Key) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		return el.Value.(*entry)
	}
	return nil
}

func (c *Cache) pin(e *entry) *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.pins++
	return &Handle{c: c, e: e}
}

func (c *Cache) unpin(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.pins--
	if e.evicted && e.pins == 0 && e.cached {
		c.rc.ReleaseMemory(e.size)
	}
}

// insert adds a loaded bitmap. Oversized or admission-denied entries are
// returned uncached so the caller still gets its result.
func (c *Cache) insert(key Key, bm *bitmap.Bitmap) *entry {
	e := &entry{
		key:  key,
		bm:   bm,
		size: int64(bm.SizeInBytes()),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.size > c.capacity {
		return e
	}

	// Evict cold entries before charging the controller, so released
	// bytes are available for the new acquisition.
	for c.size+e.size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeLocked(back)
	}

	if !c.rc.TryAcquireMemory(e.size) {
		return e
	}

	e.cached = true
	el := c.evictList.PushFront(e)
	c.items[key] = el
	c.size += e.size
	return e
}

func (c *Cache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.evictList.Remove(el)
	delete(c.items, e.key)
	c.size -= e.size
	if e.pins == 0 {
		c.rc.ReleaseMemory(e.size)
	} else {
		// Deferred: the last unpin releases the accounting.
		e.evicted = true
	}
}

// Invalidate removes entries matching the predicate.
func (c *Cache) Invalidate(pred func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.evictList.Front(); el != nil; {
		next := el.Next()
		if pred(el.Value.(*entry).key) {
			c.removeLocked(el)
		}
		el = next
	}
}
