// internal/anomaly/classifier.go
package anomaly

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/malikhammadd/dust-detector/internal/data"
)

// Severity bands as multiples of the safe threshold. With the default
// WHO thresholds this gives pm25 bands (25,28] / (28,35] / (35,50] / >50
// and pm10 bands (50,56] / (56,70] / (70,100] / >100.
const (
	lowBand      = 1.12
	moderateBand = 1.4
	criticalBand = 2.0
)

// Classifier maps a reading to an optional threshold-crossing alert.
// Classification is a pure function of the reading and the thresholds;
// the classifier holds no mutable state.
type Classifier struct {
	thresholds data.Thresholds
}

func NewClassifier(thresholds data.Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify evaluates pm25 and pm10 independently against their
// thresholds. Both within limits returns nil. When both breach, the
// metric with the higher severity tier wins; ties go to PM2.5.
func (c *Classifier) Classify(r data.Reading) *data.Alert {
	sev25 := severityFor(r.PM25, c.thresholds.PM25Safe)
	sev10 := severityFor(r.PM10, c.thresholds.PM10Safe)

	if sev25 == "" && sev10 == "" {
		return nil
	}

	metric := data.MetricPM25
	value := r.PM25
	threshold := c.thresholds.PM25Safe
	severity := sev25
	if sev10.Rank() > sev25.Rank() {
		metric = data.MetricPM10
		value = r.PM10
		threshold = c.thresholds.PM10Safe
		severity = sev10
	}

	return &data.Alert{
		ID:        uuid.New().String(),
		MoteID:    r.MoteID,
		Timestamp: r.Timestamp,
		Metric:    metric,
		Value:     value,
		Threshold: threshold,
		Severity:  severity,
		Location:  r.Location,
		Message:   c.alertMessage(r, severity),
	}
}

// severityFor returns the tier for a value over its threshold, or ""
// when the value is within limits.
func severityFor(value, threshold float64) data.Severity {
	if value <= threshold {
		return ""
	}
	// Compare by ratio so band edges land exactly on the table values
	// (35.0/25.0 == 1.4; 25.0*1.4 does not round to 35.0).
	ratio := value / threshold
	switch {
	case ratio > criticalBand:
		return data.SeverityCritical
	case ratio > moderateBand:
		return data.SeverityHigh
	case ratio > lowBand:
		return data.SeverityModerate
	default:
		return data.SeverityLow
	}
}

func (c *Classifier) alertMessage(r data.Reading, severity data.Severity) string {
	var issues []string
	if r.PM25 > c.thresholds.PM25Safe {
		issues = append(issues, fmt.Sprintf("PM2.5: %.2f ug/m3 (threshold: %.1f)", r.PM25, c.thresholds.PM25Safe))
	}
	if r.PM10 > c.thresholds.PM10Safe {
		issues = append(issues, fmt.Sprintf("PM10: %.2f ug/m3 (threshold: %.1f)", r.PM10, c.thresholds.PM10Safe))
	}
	return fmt.Sprintf("[!] %s ALERT at Mote %s: %s", severity, r.MoteID, strings.Join(issues, ", "))
}
