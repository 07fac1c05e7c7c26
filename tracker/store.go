package tracker

import (
	"sync"
)

// TrackerStore hands out one tracker per logical worker, keyed by an
// explicit caller-chosen identifier. Workers never share a tracker, so there
// is no cross-instance state to keep consistent.
type TrackerStore struct {
	// Config is applied to every tracker the store creates.
	Config Config

	initOnce sync.Once
	mutex    sync.RWMutex
	trackers map[string]*Tracker
}

func (s *TrackerStore) init() {
	s.trackers = map[string]*Tracker{}
}

// GetOrCreate returns the tracker registered under key, creating it on first
// use.
func (s *TrackerStore) GetOrCreate(key string) *Tracker {
	s.initOnce.Do(s.init)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t, ok := s.trackers[key]; ok {
		return t
	}

	t := New(s.Config)
	s.trackers[key] = t
	return t
}

// Get returns the tracker registered under key, if any.
func (s *TrackerStore) Get(key string) (*Tracker, bool) {
	s.initOnce.Do(s.init)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, ok := s.trackers[key]
	return t, ok
}

// Remove closes and forgets the tracker registered under key.
func (s *TrackerStore) Remove(key string) {
	s.initOnce.Do(s.init)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.trackers[key]
	if !ok {
		return
	}

	delete(s.trackers, key)
	t.Close()
}

// Count returns the number of live trackers.
func (s *TrackerStore) Count() int {
	s.initOnce.Do(s.init)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.trackers)
}

// Close closes every tracker in the store.
func (s *TrackerStore) Close() {
	s.initOnce.Do(s.init)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key, t := range s.trackers {
		delete(s.trackers, key)
		t.Close()
	}
}
