package tracker

import (
	"sync"

	"github.com/voxelhive/warden/models"
)

const (
	// cacheCapacity bounds the query result cache. The oldest entry is
	// evicted first when the ring is full.
	cacheCapacity = 32

	// cacheTTLTicks is how long a cached result stays valid.
	cacheTTLTicks uint64 = 5

	// cacheMatchTolerance is the per-axis viewer position and radius slack
	// within which a cached result is reused.
	cacheMatchTolerance float32 = 0.5
)

type cacheEntry struct {
	viewerPos    models.Position
	radius       float32
	creationTick uint64
	result       []int64
}

func (e *cacheEntry) matches(viewerPos models.Position, radius float32) bool {
	dx := e.viewerPos.X - viewerPos.X
	if dx < 0 {
		dx = -dx
	}
	dz := e.viewerPos.Z - viewerPos.Z
	if dz < 0 {
		dz = -dz
	}
	dr := e.radius - radius
	if dr < 0 {
		dr = -dr
	}
	return dx < cacheMatchTolerance && dz < cacheMatchTolerance && dr < cacheMatchTolerance
}

func (e *cacheEntry) fresh(currentTick uint64) bool {
	return currentTick-e.creationTick < cacheTTLTicks
}

// queryCache memoizes recent visibility results. It has its own lock so
// concurrent readers holding the tracker's shared lock can still record
// results.
type queryCache struct {
	mutex   sync.Mutex
	entries []cacheEntry
}

func newQueryCache() *queryCache {
	return &queryCache{
		entries: make([]cacheEntry, 0, cacheCapacity),
	}
}

// lookup returns a cached result for a near-identical query, if one is still
// fresh at the given tick.
func (c *queryCache) lookup(viewerPos models.Position, radius float32, currentTick uint64) ([]int64, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i := range c.entries {
		e := &c.entries[i]
		if e.matches(viewerPos, radius) && e.fresh(currentTick) {
			out := make([]int64, len(e.result))
			copy(out, e.result)
			return out, true
		}
	}
	return nil, false
}

// store records a query result, evicting the oldest entry when full. The
// result is copied: callers own the slice they got back and may mutate it.
func (c *queryCache) store(viewerPos models.Position, radius float32, currentTick uint64, result []int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.entries) >= cacheCapacity {
		copy(c.entries, c.entries[1:])
		c.entries = c.entries[:len(c.entries)-1]
	}

	kept := make([]int64, len(result))
	copy(kept, result)

	c.entries = append(c.entries, cacheEntry{
		viewerPos:    viewerPos,
		radius:       radius,
		creationTick: currentTick,
		result:       kept,
	})
}

// sweep drops entries that are no longer fresh at the given tick.
func (c *queryCache) sweep(currentTick uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.fresh(currentTick) {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

func (c *queryCache) len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}
