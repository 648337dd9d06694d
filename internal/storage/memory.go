// internal/storage/memory.go
package storage

import (
	"sort"
	"sync"

	"github.com/malikhammadd/dust-detector/internal/data"
)

// ReadingStore is a bounded, time-ordered buffer of readings, kept per
// mote and globally. One writer (the tick wave) and any number of
// readers; a single RWMutex serializes access and every read copies
// out, so callers never see the live buffers.
type ReadingStore struct {
	mu        sync.RWMutex
	perMote   map[string][]data.Reading
	global    []data.Reading
	retention int // max readings kept per mote
	globalCap int // max readings kept in the global buffer
	appended  int64
}

// NewReadingStore creates a store keeping up to retention readings per
// mote and retention*10 readings globally.
func NewReadingStore(retention int) *ReadingStore {
	return &ReadingStore{
		perMote:   make(map[string][]data.Reading),
		global:    make([]data.Reading, 0, retention*10),
		retention: retention,
		globalCap: retention * 10,
	}
}

// Append adds a reading, evicting the oldest entries once the per-mote
// or global retention cap is exceeded. Amortized O(1).
func (s *ReadingStore) Append(r data.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.perMote[r.MoteID]
	if len(buf) >= s.retention {
		buf = buf[1:]
	}
	s.perMote[r.MoteID] = append(buf, r)

	if len(s.global) >= s.globalCap {
		s.global = s.global[1:]
	}
	s.global = append(s.global, r)
	s.appended++
}

// Recent returns up to n of the mote's most recent readings, oldest
// first. n <= 0 returns the whole retained window. The result is a copy.
func (s *ReadingStore) Recent(moteID string, n int) []data.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tail(s.perMote[moteID], n)
}

// AllRecent returns up to n of the most recent readings across all
// motes in append order, oldest first.
func (s *ReadingStore) AllRecent(n int) []data.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tail(s.global, n)
}

// MoteIDs returns the IDs of every mote that has appended at least one
// reading, sorted for stable iteration.
func (s *ReadingStore) MoteIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.perMote))
	for id := range s.perMote {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalAppended returns the number of readings ever appended, including
// those already evicted from the retained windows.
func (s *ReadingStore) TotalAppended() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appended
}

func tail(buf []data.Reading, n int) []data.Reading {
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	result := make([]data.Reading, n)
	copy(result, buf[len(buf)-n:])
	return result
}
