// internal/stats/engine.go
package stats

import (
	"math"
	"sync"

	"github.com/malikhammadd/dust-detector/internal/data"
	"github.com/malikhammadd/dust-detector/internal/storage"
)

// Engine recomputes rolling aggregates over the reading store. Each
// update replaces the mote's snapshot wholesale; snapshots are value
// types and never mutated after publication.
type Engine struct {
	store      *storage.ReadingStore
	thresholds data.Thresholds
	window     int // readings per mote considered by an update

	mu        sync.RWMutex
	snapshots map[string]data.StatSnapshot
}

// NewEngine creates an engine reducing over up to window readings per
// mote. The window is bounded by the store's retention anyway, so a
// full recompute per update stays O(window).
func NewEngine(store *storage.ReadingStore, thresholds data.Thresholds, window int) *Engine {
	return &Engine{
		store:      store,
		thresholds: thresholds,
		window:     window,
		snapshots:  make(map[string]data.StatSnapshot),
	}
}

// Update recomputes the mote's snapshot from its retained window and
// publishes it. Recomputing with no new readings yields an identical
// snapshot.
func (e *Engine) Update(moteID string) data.StatSnapshot {
	readings := e.store.Recent(moteID, e.window)
	snap := reduce(moteID, readings, e.thresholds)

	e.mu.Lock()
	e.snapshots[moteID] = snap
	e.mu.Unlock()
	return snap
}

// Snapshot returns the mote's latest published snapshot, or a zero
// snapshot if the mote has never been updated.
func (e *Engine) Snapshot(moteID string) data.StatSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if snap, ok := e.snapshots[moteID]; ok {
		return snap
	}
	return zeroSnapshot(moteID)
}

// AllSnapshots returns a copy of every published per-mote snapshot.
func (e *Engine) AllSnapshots() map[string]data.StatSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]data.StatSnapshot, len(e.snapshots))
	for id, snap := range e.snapshots {
		out[id] = snap
	}
	return out
}

// GlobalSnapshot aggregates the latest per-mote snapshots: unweighted
// mean of the per-mote averages, max of maxes, min of mins, summed
// counts. Empty input yields a zero SAFE snapshot.
func (e *Engine) GlobalSnapshot() data.StatSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	global := zeroSnapshot(data.GlobalMoteID)
	populated := 0
	var sum25, sum10 float64

	for _, snap := range e.snapshots {
		if snap.Count == 0 {
			continue
		}
		if populated == 0 {
			global.MinPM25, global.MinPM10 = snap.MinPM25, snap.MinPM10
		}
		populated++
		global.Count += snap.Count
		sum25 += snap.AvgPM25
		sum10 += snap.AvgPM10
		global.MaxPM25 = math.Max(global.MaxPM25, snap.MaxPM25)
		global.MaxPM10 = math.Max(global.MaxPM10, snap.MaxPM10)
		global.MinPM25 = math.Min(global.MinPM25, snap.MinPM25)
		global.MinPM10 = math.Min(global.MinPM10, snap.MinPM10)
	}

	if populated == 0 {
		return global
	}

	global.AvgPM25 = round2(sum25 / float64(populated))
	global.AvgPM10 = round2(sum10 / float64(populated))
	if !e.thresholds.Safe(global.AvgPM25, global.AvgPM10) {
		global.Status = data.StatusUnsafe
	}
	return global
}

// PollutionMap projects the latest per-mote snapshots onto mote
// locations for the map consumer. Motes without readings are skipped.
func (e *Engine) PollutionMap(locations map[string]data.Location) []data.MapEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	entries := make([]data.MapEntry, 0, len(locations))
	for id, loc := range locations {
		snap, ok := e.snapshots[id]
		if !ok || snap.Count == 0 {
			continue
		}
		entries = append(entries, data.MapEntry{
			MoteID:   id,
			Location: loc,
			AvgPM25:  snap.AvgPM25,
			AvgPM10:  snap.AvgPM10,
			Status:   snap.Status,
		})
	}
	return entries
}

func reduce(moteID string, readings []data.Reading, thresholds data.Thresholds) data.StatSnapshot {
	snap := zeroSnapshot(moteID)
	if len(readings) == 0 {
		return snap
	}

	snap.Count = len(readings)
	snap.MinPM25, snap.MinPM10 = readings[0].PM25, readings[0].PM10
	var sum25, sum10 float64

	for _, r := range readings {
		sum25 += r.PM25
		sum10 += r.PM10
		snap.MaxPM25 = math.Max(snap.MaxPM25, r.PM25)
		snap.MaxPM10 = math.Max(snap.MaxPM10, r.PM10)
		snap.MinPM25 = math.Min(snap.MinPM25, r.PM25)
		snap.MinPM10 = math.Min(snap.MinPM10, r.PM10)
	}

	snap.AvgPM25 = round2(sum25 / float64(snap.Count))
	snap.AvgPM10 = round2(sum10 / float64(snap.Count))
	if !thresholds.Safe(snap.AvgPM25, snap.AvgPM10) {
		snap.Status = data.StatusUnsafe
	}
	return snap
}

func zeroSnapshot(moteID string) data.StatSnapshot {
	return data.StatSnapshot{MoteID: moteID, Status: data.StatusSafe}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
