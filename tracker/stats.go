package tracker

// Stats is a by-value snapshot of a tracker's counters. All fields are
// monotonic except AvgQueryTimeNs, which is a last-sample gauge.
type Stats struct {
	TotalQueries       uint64
	CacheHits          uint64
	SIMDOperations     uint64
	AsyncTasksEnqueued uint64
	EntitiesProcessed  uint64
	AvgQueryTimeNs     int64
}

// Stats returns a snapshot of the tracker's counters.
func (t *Tracker) Stats() Stats {
	t.statsMutex.Lock()
	defer t.statsMutex.Unlock()

	return t.stats
}

// ResetStats zeroes all counters.
func (t *Tracker) ResetStats() {
	t.statsMutex.Lock()
	defer t.statsMutex.Unlock()

	t.stats = Stats{}
}
