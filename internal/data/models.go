// internal/data/models.go
package data

import "time"

// Location - (x, y) coordinates of a mote on the simulated grid
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Reading - a single pollution measurement emitted by one mote.
// Immutable once created; the store owns it after append.
type Reading struct {
	MoteID      string    `json:"mote_id"`
	Timestamp   time.Time `json:"timestamp"`
	PM25        float64   `json:"pm25"`        // ug/m3
	PM10        float64   `json:"pm10"`        // ug/m3
	Temperature float64   `json:"temperature"` // Celsius
	Humidity    float64   `json:"humidity"`    // percent
	Location    Location  `json:"location"`
}

// Status classifies a reading window against the safe thresholds.
type Status string

const (
	StatusSafe   Status = "SAFE"
	StatusUnsafe Status = "UNSAFE"
)

// Metric names the pollutant that triggered an alert.
type Metric string

const (
	MetricPM25 Metric = "PM25"
	MetricPM10 Metric = "PM10"
)

// Severity - ordinal tier of a threshold breach
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of a severity (LOW=1 .. CRITICAL=4).
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Thresholds - safe limits for each pollutant (WHO guideline defaults).
// Read-only during a run; passed explicitly, never a global.
type Thresholds struct {
	PM25Safe float64 `json:"pm25_safe"`
	PM10Safe float64 `json:"pm10_safe"`
}

// DefaultThresholds returns the WHO guideline limits.
func DefaultThresholds() Thresholds {
	return Thresholds{PM25Safe: 25.0, PM10Safe: 50.0}
}

// Safe reports whether both pollutant values are within the thresholds.
func (t Thresholds) Safe(pm25, pm10 float64) bool {
	return pm25 <= t.PM25Safe && pm10 <= t.PM10Safe
}

// Alert - Structure for recording and broadcasting a threshold breach
type Alert struct {
	ID        string    `json:"id"`
	MoteID    string    `json:"mote_id"`
	Timestamp time.Time `json:"timestamp"`
	Metric    Metric    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Severity  Severity  `json:"severity"`
	Location  Location  `json:"location"`
	Message   string    `json:"message"`
}

// StatSnapshot - rolling aggregate over one mote's recent readings,
// or over all motes when MoteID is "global". Replaced wholesale on
// each update, never mutated in place.
type StatSnapshot struct {
	MoteID  string  `json:"mote_id"`
	Count   int     `json:"count"`
	AvgPM25 float64 `json:"avg_pm25"`
	AvgPM10 float64 `json:"avg_pm10"`
	MaxPM25 float64 `json:"max_pm25"`
	MaxPM10 float64 `json:"max_pm10"`
	MinPM25 float64 `json:"min_pm25"`
	MinPM10 float64 `json:"min_pm10"`
	Status  Status  `json:"status"`
}

// GlobalMoteID marks the snapshot aggregated across every mote.
const GlobalMoteID = "global"

// MapEntry - one cell of the pollution map: where a mote sits and
// whether its recent window is safe.
type MapEntry struct {
	MoteID   string   `json:"mote_id"`
	Location Location `json:"location"`
	AvgPM25  float64  `json:"pm25"`
	AvgPM10  float64  `json:"pm10"`
	Status   Status   `json:"status"`
}

// Snapshot - the export contract consumed by external persistence and
// visualization collaborators. Field names are part of the contract.
type Snapshot struct {
	Readings     []Reading               `json:"readings"`
	Statistics   map[string]StatSnapshot `json:"statistics"`
	PollutionMap []MapEntry              `json:"pollution_map"`
	Alerts       []Alert                 `json:"alerts"`
}
