// Package tracker implements the hierarchical spatial tracker: a region grid
// refined by per-region quadrant indexes, fronted by a query result cache,
// predictive prefetch for players, batched proximity filtering and an async
// sync queue.
package tracker

import (
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/voxelhive/warden/filter"
	"github.com/voxelhive/warden/grid"
	"github.com/voxelhive/warden/models"
	"github.com/voxelhive/warden/syncq"
)

const (
	// DefaultViewDistance is the view radius used when the caller never sets
	// one, in world units.
	DefaultViewDistance float32 = 64

	// predictedRadiusFactor shrinks the view radius for the forecast-position
	// query. The prefetched ring is narrower than the live one.
	predictedRadiusFactor float32 = 0.8

	// cacheSweepInterval and reapInterval are maintenance cadences in ticks.
	cacheSweepInterval uint64 = 100
	reapInterval       uint64 = 600

	// staleThresholdTicks is how long an entity may go without an update
	// before the reaper purges it. 6000 ticks is 5 minutes at 20 TPS.
	staleThresholdTicks uint64 = 6000
)

// Config carries the construction-time options of a Tracker.
type Config struct {
	// ViewDistance is the default view radius. Zero means
	// DefaultViewDistance.
	ViewDistance float32

	// SIMDEnabled enables the batched proximity filter path. It only takes
	// effect on hosts where vector support is detected.
	SIMDEnabled bool

	// PredictiveLoading merges candidates around each player's forecast
	// position into visibility results.
	PredictiveLoading bool

	// PriorityScheduling skips low-tier idle entities on odd maintenance
	// ticks.
	PriorityScheduling bool

	// QueueCapacity bounds the async sync queue. Zero means
	// syncq.DefaultCapacity.
	QueueCapacity int

	// SyncHandler consumes sync tasks on the background worker. May be nil.
	SyncHandler syncq.Handler
}

// Tracker tracks moving entities across an unbounded region grid and answers
// visibility queries. One reader-writer lock guards all tracker state:
// queries share it, mutations and ticks take it exclusively. The sync queue
// is independently synchronized and never feeds back into query state.
type Tracker struct {
	uuid string

	mutex      sync.RWMutex
	entities   map[int64]*models.TrackedEntity
	grid       *grid.RegionGrid
	predictors map[int64]*motionPredictor

	cache  *queryCache
	filter *filter.ProximityFilter
	queue  *syncq.Queue

	currentTick uint64

	viewDistance       float32
	simdEnabled        bool
	predictiveLoading  bool
	priorityScheduling bool

	statsMutex sync.Mutex
	stats      Stats

	closeOnce sync.Once
}

// New creates a tracker and starts its background sync worker.
func New(conf Config) *Tracker {
	viewDistance := conf.ViewDistance
	if viewDistance <= 0 {
		viewDistance = DefaultViewDistance
	}

	return &Tracker{
		uuid:               uuid.New().String(),
		entities:           make(map[int64]*models.TrackedEntity),
		grid:               grid.NewRegionGrid(),
		predictors:         make(map[int64]*motionPredictor),
		cache:              newQueryCache(),
		filter:             filter.New(),
		queue:              syncq.New(conf.QueueCapacity, conf.SyncHandler),
		viewDistance:       viewDistance,
		simdEnabled:        conf.SIMDEnabled,
		predictiveLoading:  conf.PredictiveLoading,
		priorityScheduling: conf.PriorityScheduling,
	}
}

// UUID returns the tracker instance id.
func (t *Tracker) UUID() string {
	return t.uuid
}

// Close stops the background worker. Unconsumed sync tasks are dropped.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		t.queue.Close()
	})
}

// RegisterEntity adds an entity to the tracker. Registering an already
// tracked id overwrites the previous record, re-homing it in the region
// grid so no stale grid entry survives. Players additionally get a motion
// predictor seeded with zero velocity.
func (t *Tracker) RegisterEntity(id int64, pos models.Position, radius float32, category models.Category) error {
	if category < models.CategoryPlayer || category > models.CategoryOther {
		return errors.New("unknown entity category").
			WithTag("entity_id", id).
			WithTag("category", int(category))
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if prev, ok := t.entities[id]; ok {
		t.grid.Remove(id, prev.Position)
		delete(t.predictors, id)
	}

	t.entities[id] = &models.TrackedEntity{
		ID:             id,
		Position:       pos,
		Radius:         radius,
		Category:       category,
		Tier:           category.Tier(),
		LastUpdateTick: t.currentTick,
	}
	t.grid.Insert(id, pos)

	if category == models.CategoryPlayer {
		t.predictors[id] = newMotionPredictor(pos, t.currentTick)
	}

	instrumentEntityCount(t.uuid, len(t.entities))
	instrumentRegionCount(t.uuid, t.grid.RegionCount())
	return nil
}

// UnregisterEntity removes an entity. Unknown ids are a no-op: callers may
// race late unregisters against registration.
func (t *Tracker) UnregisterEntity(id int64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	e, ok := t.entities[id]
	if !ok {
		return
	}

	t.grid.Remove(id, e.Position)
	delete(t.predictors, id)
	delete(t.entities, id)

	instrumentEntityCount(t.uuid, len(t.entities))
	instrumentRegionCount(t.uuid, t.grid.RegionCount())
}

// UpdateEntityPosition moves an entity. Unknown ids are a no-op. When the
// move crosses a cell boundary the entity is removed from the old region
// before insertion into the new one. A sync task is enqueued best-effort; a
// full queue never fails the update.
func (t *Tracker) UpdateEntityPosition(id int64, pos models.Position) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	e, ok := t.entities[id]
	if !ok {
		return
	}

	oldPos := e.Position
	e.Position = pos
	e.LastUpdateTick = t.currentTick
	e.AccessCount++

	if p, ok := t.predictors[id]; ok {
		p.observe(pos, t.currentTick)
	}

	oldCellX, oldCellZ := oldPos.Cell()
	newCellX, newCellZ := pos.Cell()
	if oldCellX != newCellX || oldCellZ != newCellZ {
		t.grid.Remove(id, oldPos)
		t.grid.Insert(id, pos)
		instrumentRegionCount(t.uuid, t.grid.RegionCount())
	}

	if t.queue.TryEnqueue(models.SyncTask{
		EntityID: id,
		Position: pos,
		Tick:     t.currentTick,
	}) {
		t.statsMutex.Lock()
		t.stats.AsyncTasksEnqueued++
		t.statsMutex.Unlock()
	}
}

// GetVisibleEntities returns the ids visible to a viewer at viewerPos within
// viewRadius. A non-positive viewRadius falls back to the tracker's view
// distance. The result is best-effort by contract: it is never nil and an
// internal fault degrades to an empty list instead of propagating.
func (t *Tracker) GetVisibleEntities(viewerID int64, viewerPos models.Position, viewRadius float32) (result []int64) {
	start := time.Now()
	cacheHit := false

	defer func() {
		if r := recover(); r != nil {
			logs.WithTag("viewer_id", viewerID).
				WithTag("panic", r).
				Error(errors.New("visibility query failed"))
			result = []int64{}
		}

		t.statsMutex.Lock()
		t.stats.TotalQueries++
		if cacheHit {
			t.stats.CacheHits++
		}
		t.stats.AvgQueryTimeNs = time.Since(start).Nanoseconds()
		t.statsMutex.Unlock()

		instrumentQuery(t.uuid, start, cacheHit)
	}()

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if viewRadius <= 0 {
		viewRadius = t.viewDistance
	}

	if cached, ok := t.cache.lookup(viewerPos, viewRadius, t.currentTick); ok {
		cacheHit = true
		return cached
	}

	candidates := t.grid.QueryNeighborhood(viewerPos, viewRadius)

	if t.predictiveLoading {
		if p, ok := t.predictors[viewerID]; ok {
			predicted := t.grid.QueryNeighborhood(p.forecastPosition(), viewRadius*predictedRadiusFactor)
			candidates = mergeCandidates(candidates, predicted)
		}
	}

	result = t.filterCandidates(candidates, viewerPos, viewRadius)
	t.cache.store(viewerPos, viewRadius, t.currentTick, result)
	return result
}

// mergeCandidates appends the ids of extra not already present in base,
// preserving base order. The merge deduplicates without re-sorting.
func mergeCandidates(base, extra []int64) []int64 {
	seen := make(map[int64]struct{}, len(base))
	for _, id := range base {
		seen[id] = struct{}{}
	}
	for _, id := range extra {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		base = append(base, id)
	}
	return base
}

// filterCandidates resolves candidate ids and keeps those within viewRadius
// of the viewer in the horizontal plane. The batched path is used when
// enabled, supported by the host and worth a full batch; the scalar path
// applies the identical inclusion predicate.
func (t *Tracker) filterCandidates(ids []int64, viewerPos models.Position, viewRadius float32) []int64 {
	candidates := make([]filter.Candidate, 0, len(ids))
	for _, id := range ids {
		e, ok := t.entities[id]
		if !ok {
			continue
		}
		candidates = append(candidates, filter.Candidate{
			ID: id,
			X:  e.Position.X,
			Z:  e.Position.Z,
		})
	}

	maxDistSq := viewRadius * viewRadius

	if t.simdEnabled && len(candidates) >= filter.BatchSize && t.filter.Vectorized() {
		visible, batches := t.filter.ApplyBatched(candidates, viewerPos.X, viewerPos.Z, maxDistSq)

		t.statsMutex.Lock()
		t.stats.SIMDOperations += uint64(batches)
		t.statsMutex.Unlock()
		return visible
	}

	return t.filter.ApplyScalar(candidates, viewerPos.X, viewerPos.Z, maxDistSq)
}

// Tick advances the logical clock and runs due maintenance: the priority
// sweep each tick, a cache sweep every 100 ticks and a staleness reap every
// 600 ticks.
func (t *Tracker) Tick() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.currentTick++
	tick := t.currentTick

	if t.priorityScheduling {
		t.sweepPriorityBuckets(tick)
	}

	if tick%cacheSweepInterval == 0 {
		t.cache.sweep(tick)
	}

	if tick%reapInterval == 0 {
		t.reapStale(tick)
	}
}

// sweepPriorityBuckets partitions entities into priority tiers and counts a
// processing pass over each. Tiers at or below medium skip odd ticks until
// the entity has moved at least once.
func (t *Tracker) sweepPriorityBuckets(tick uint64) {
	var buckets [4][]*models.TrackedEntity
	for _, e := range t.entities {
		buckets[e.Tier] = append(buckets[e.Tier], e)
	}

	processed := uint64(0)
	for tier, bucket := range buckets {
		for _, e := range bucket {
			if models.PriorityTier(tier) >= models.TierMedium &&
				tick%2 == 1 &&
				e.LastUpdateTick == 0 {
				continue
			}
			processed++
		}
	}

	t.statsMutex.Lock()
	t.stats.EntitiesProcessed += processed
	t.statsMutex.Unlock()
}

// reapStale purges entities that have not been updated for
// staleThresholdTicks.
func (t *Tracker) reapStale(tick uint64) {
	var stale []int64
	for id, e := range t.entities {
		if tick-e.LastUpdateTick > staleThresholdTicks {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return
	}

	for _, id := range stale {
		e := t.entities[id]
		t.grid.Remove(id, e.Position)
		delete(t.predictors, id)
		delete(t.entities, id)
	}

	logs.WithTag("tracker", t.uuid).
		WithTag("reaped", len(stale)).
		WithTag("tick", tick).
		Debug("purged stale entities")

	instrumentReapedEntities(t.uuid, len(stale))
	instrumentEntityCount(t.uuid, len(t.entities))
	instrumentRegionCount(t.uuid, t.grid.RegionCount())
}

// CurrentTick returns the logical clock value.
func (t *Tracker) CurrentTick() uint64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.currentTick
}

// EntityCount returns the number of tracked entities.
func (t *Tracker) EntityCount() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return len(t.entities)
}

// ActiveRegionCount returns the number of live regions in the spatial grid.
func (t *Tracker) ActiveRegionCount() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.grid.RegionCount()
}

// SetViewDistance sets the default view radius.
func (t *Tracker) SetViewDistance(v float32) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if v > 0 {
		t.viewDistance = v
	}
}

// ViewDistance returns the default view radius.
func (t *Tracker) ViewDistance() float32 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.viewDistance
}

// SetSIMDEnabled toggles the batched proximity filter path.
func (t *Tracker) SetSIMDEnabled(v bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.simdEnabled = v
}

// SetPredictiveLoadingEnabled toggles forecast-position prefetch.
func (t *Tracker) SetPredictiveLoadingEnabled(v bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.predictiveLoading = v
}

// SetPrioritySchedulingEnabled toggles the tick-time priority sweep.
func (t *Tracker) SetPrioritySchedulingEnabled(v bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.priorityScheduling = v
}
