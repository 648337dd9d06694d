// internal/mote/mote.go
package mote

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/malikhammadd/dust-detector/internal/data"
)

const (
	spikeMinTicks = 3 // length of a pollution spike episode, in ticks
	spikeMaxTicks = 6

	tempMin = -10.0
	tempMax = 45.0
)

// Mote simulates a single smart dust sensor node. It owns its random
// source and walk state; only its own GenerateReading mutates it, so a
// mote must not be shared between concurrent generators.
type Mote struct {
	ID       string
	Location data.Location

	basePollution float64 // 0.0 (clean) .. 1.0 (heavily polluted)
	spikeProb     float64 // chance per tick of starting a spike episode
	rng           *rand.Rand

	spikeTicks  int // remaining ticks of the current spike episode
	temperature float64
	humidity    float64
}

// New creates a mote with a deterministic random source. Motes built
// from the same seed produce the same reading sequence.
func New(id string, loc data.Location, basePollution, spikeProb float64, seed int64) *Mote {
	rng := rand.New(rand.NewSource(seed))
	return &Mote{
		ID:            id,
		Location:      loc,
		basePollution: basePollution,
		spikeProb:     spikeProb,
		rng:           rng,
		temperature:   20.0 + rng.NormFloat64()*2,
		humidity:      clamp(40.0+rng.NormFloat64()*10, 0, 100),
	}
}

// NewAt creates a mote at a random location on the 100x100 grid with a
// random pollution profile, the way the simulation seeds its fleet.
func NewAt(index int, spikeProb float64, seed int64) *Mote {
	rng := rand.New(rand.NewSource(seed))
	loc := data.Location{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	base := rng.Float64() * 0.8
	id := fmt.Sprintf("MOTE-%03d", index+1)
	return New(id, loc, base, spikeProb, rng.Int63())
}

// GenerateReading produces one synthetic reading. PM values are a
// pollution-profile baseline with gaussian perturbation, pushed above
// threshold while a spike episode is active. Temperature and humidity
// follow bounded random walks. Never fails; values never go negative.
func (m *Mote) GenerateReading(now time.Time) data.Reading {
	if m.spikeTicks == 0 && m.rng.Float64() < m.spikeProb {
		m.spikeTicks = spikeMinTicks + m.rng.Intn(spikeMaxTicks-spikeMinTicks+1)
	}

	pm25Base := 10.0 + m.basePollution*40.0
	pm10Base := 20.0 + m.basePollution*60.0

	// Shared drift models wind / time-of-day swings hitting both sizes.
	drift := 1.0 + 0.3*m.rng.NormFloat64()
	pm25 := pm25Base*drift + m.rng.NormFloat64()*5
	pm10 := pm10Base*drift + m.rng.NormFloat64()*8

	if m.spikeTicks > 0 {
		pm25 += 40.0 + m.rng.Float64()*30.0
		pm10 += 70.0 + m.rng.Float64()*50.0
		m.spikeTicks--
	}

	m.temperature = clamp(m.temperature+m.rng.NormFloat64()*0.8, tempMin, tempMax)
	m.humidity = clamp(m.humidity+m.rng.NormFloat64()*2.0, 0, 100)

	return data.Reading{
		MoteID:      m.ID,
		Timestamp:   now,
		PM25:        round2(math.Max(0, pm25)),
		PM10:        round2(math.Max(0, pm10)),
		Temperature: round2(m.temperature),
		Humidity:    round2(m.humidity),
		Location:    m.Location,
	}
}

// InSpike reports whether a spike episode is currently active.
func (m *Mote) InSpike() bool {
	return m.spikeTicks > 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
