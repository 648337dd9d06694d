// internal/sim/orchestrator.go
package sim

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/malikhammadd/dust-detector/internal/alerting"
	"github.com/malikhammadd/dust-detector/internal/anomaly"
	"github.com/malikhammadd/dust-detector/internal/config"
	"github.com/malikhammadd/dust-detector/internal/data"
	"github.com/malikhammadd/dust-detector/internal/mote"
	"github.com/malikhammadd/dust-detector/internal/stats"
	"github.com/malikhammadd/dust-detector/internal/storage"
	"github.com/malikhammadd/dust-detector/internal/websocket"
)

// State of the orchestrator. Transitions are IDLE -> RUNNING -> STOPPED,
// one way only; a stopped orchestrator is not restartable.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ErrAlreadyStarted is returned when Start is called on an orchestrator
// that has left the IDLE state.
var ErrAlreadyStarted = errors.New("orchestrator already started")

const statusEvery = 5 // log a status line every N waves

// Orchestrator drives the sampling loop: once per interval it runs one
// tick wave, generating a reading from every mote concurrently and
// joining the wave before the next interval. The store and alert log
// are the only shared sinks; motes are touched only by their own wave
// goroutine.
type Orchestrator struct {
	cfg        *config.Config
	store      *storage.ReadingStore
	engine     *stats.Engine
	classifier *anomaly.Classifier
	alerter    *alerting.Alerter
	hub        *websocket.Hub
	motes      []*mote.Mote

	state    atomic.Int32
	waves    atomic.Int64
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New builds the orchestrator and its mote fleet from a validated
// config. Motes get randomized grid locations and pollution profiles
// derived from the configured seed, so runs are reproducible.
func New(cfg *config.Config, store *storage.ReadingStore, engine *stats.Engine,
	classifier *anomaly.Classifier, alerter *alerting.Alerter, hub *websocket.Hub) *Orchestrator {

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	motes := make([]*mote.Mote, cfg.Simulation.NumMotes)
	for i := range motes {
		motes[i] = mote.NewAt(i, cfg.Simulation.SpikeProbability, seed+int64(i))
	}

	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		engine:     engine,
		classifier: classifier,
		alerter:    alerter,
		hub:        hub,
		motes:      motes,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start transitions IDLE -> RUNNING and launches the tick loop. The
// loop runs until the configured duration elapses or Stop is called.
func (o *Orchestrator) Start() error {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}

	log.Printf("Simulation started: %d motes, interval %s, duration %s",
		len(o.motes), o.cfg.Interval(), o.cfg.RunDuration())

	go o.run()
	return nil
}

// Stop requests cooperative cancellation. The in-flight wave finishes
// before the state becomes STOPPED. Safe to call more than once, and
// before Start.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stopCh) })
}

// Done is closed once the loop has fully wound down.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Waves returns how many tick waves have completed.
func (o *Orchestrator) Waves() int64 {
	return o.waves.Load()
}

func (o *Orchestrator) run() {
	defer close(o.done)
	defer o.state.Store(int32(StateStopped))
	defer o.finalReport()

	interval := o.cfg.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Zero duration means run until stopped.
	var endTime time.Time
	var deadline <-chan time.Time
	if d := o.cfg.RunDuration(); d > 0 {
		endTime = time.Now().Add(d)
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}

	// First wave fires immediately; the ticker paces the rest. A tick
	// that arrives while a wave is still running is coalesced by the
	// ticker, never queued.
	o.tickWave(time.Now())

	for {
		select {
		case <-o.stopCh:
			return
		case <-deadline:
			return
		case now := <-ticker.C:
			if !endTime.IsZero() && !now.Before(endTime) {
				return
			}
			o.tickWave(now)
		}
	}
}

// tickWave runs one generation wave: one goroutine per mote, joined
// before returning so statistics stay consistent within a time slice.
func (o *Orchestrator) tickWave(now time.Time) {
	var wg sync.WaitGroup
	for _, m := range o.motes {
		wg.Add(1)
		go func(m *mote.Mote) {
			defer wg.Done()
			// One mote failing must not abort the wave for the rest;
			// it just contributes no reading this slice.
			defer func() {
				if r := recover(); r != nil {
					log.Printf("mote %s: generation failed: %v", m.ID, r)
				}
			}()

			reading := m.GenerateReading(now)
			o.store.Append(reading)
			o.engine.Update(m.ID)

			if o.hub != nil {
				o.hub.BroadcastReading(reading)
			}
			if alert := o.classifier.Classify(reading); alert != nil {
				o.alerter.Process(*alert)
			}
		}(m)
	}
	wg.Wait()

	if wave := o.waves.Add(1); wave%statusEvery == 0 {
		o.logStatus(wave)
	}
}

// Locations maps each mote to its grid position, for the pollution map.
func (o *Orchestrator) Locations() map[string]data.Location {
	locs := make(map[string]data.Location, len(o.motes))
	for _, m := range o.motes {
		locs[m.ID] = m.Location
	}
	return locs
}

// Snapshot assembles the export structure consumed by persistence and
// visualization collaborators.
func (o *Orchestrator) Snapshot() data.Snapshot {
	statistics := o.engine.AllSnapshots()
	statistics[data.GlobalMoteID] = o.engine.GlobalSnapshot()

	return data.Snapshot{
		Readings:     o.store.AllRecent(50),
		Statistics:   statistics,
		PollutionMap: o.engine.PollutionMap(o.Locations()),
		Alerts:       o.alerter.Log().Recent(10),
	}
}

func (o *Orchestrator) logStatus(wave int64) {
	global := o.engine.GlobalSnapshot()
	log.Printf("Status: wave %d, %d readings total, avg PM2.5 %.2f, avg PM10 %.2f, %d alerts",
		wave, o.store.TotalAppended(), global.AvgPM25, global.AvgPM10, o.alerter.Log().Count())
}

func (o *Orchestrator) finalReport() {
	global := o.engine.GlobalSnapshot()
	counts := o.alerter.Log().CountBySeverity()
	log.Printf("Simulation stopped after %d waves: %d readings, peak PM2.5 %.2f, peak PM10 %.2f",
		o.waves.Load(), o.store.TotalAppended(), global.MaxPM25, global.MaxPM10)
	log.Printf("Alerts by severity: LOW=%d MODERATE=%d HIGH=%d CRITICAL=%d",
		counts[data.SeverityLow], counts[data.SeverityModerate],
		counts[data.SeverityHigh], counts[data.SeverityCritical])
}
