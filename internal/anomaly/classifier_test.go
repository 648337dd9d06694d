package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malikhammadd/dust-detector/internal/data"
)

func testReading(pm25, pm10 float64) data.Reading {
	return data.Reading{
		MoteID:    "MOTE-001",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		PM25:      pm25,
		PM10:      pm10,
		Location:  data.Location{X: 10, Y: 20},
	}
}

func TestClassify_SafeReturnsNil(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	assert.Nil(t, c.Classify(testReading(10.0, 20.0)))
	assert.Nil(t, c.Classify(testReading(25.0, 50.0)), "values at the threshold are safe")
}

func TestClassify_SeverityBands(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	tests := []struct {
		name     string
		pm25     float64
		pm10     float64
		metric   data.Metric
		severity data.Severity
	}{
		{"pm25 just above threshold", 26.0, 10.0, data.MetricPM25, data.SeverityLow},
		{"pm25 low band upper edge", 28.0, 10.0, data.MetricPM25, data.SeverityLow},
		{"pm25 moderate", 28.5, 10.0, data.MetricPM25, data.SeverityModerate},
		{"pm25 moderate upper edge", 35.0, 10.0, data.MetricPM25, data.SeverityModerate},
		{"pm25 high", 36.0, 10.0, data.MetricPM25, data.SeverityHigh},
		{"pm25 high upper edge", 50.0, 10.0, data.MetricPM25, data.SeverityHigh},
		{"pm25 critical", 50.1, 10.0, data.MetricPM25, data.SeverityCritical},
		{"pm10 just above threshold", 10.0, 52.0, data.MetricPM10, data.SeverityLow},
		{"pm10 low band upper edge", 10.0, 56.0, data.MetricPM10, data.SeverityLow},
		{"pm10 moderate", 10.0, 60.0, data.MetricPM10, data.SeverityModerate},
		{"pm10 high", 10.0, 80.0, data.MetricPM10, data.SeverityHigh},
		{"pm10 critical", 10.0, 120.0, data.MetricPM10, data.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := c.Classify(testReading(tt.pm25, tt.pm10))
			require.NotNil(t, alert)
			assert.Equal(t, tt.metric, alert.Metric)
			assert.Equal(t, tt.severity, alert.Severity)
		})
	}
}

func TestClassify_ModerateScenario(t *testing.T) {
	// pm25=28.5 against threshold 25.0 must classify as MODERATE on PM25.
	c := NewClassifier(data.DefaultThresholds())

	alert := c.Classify(testReading(28.5, 10.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.MetricPM25, alert.Metric)
	assert.Equal(t, data.SeverityModerate, alert.Severity)
	assert.Equal(t, 28.5, alert.Value)
	assert.Equal(t, 25.0, alert.Threshold)
}

func TestClassify_CriticalScenario(t *testing.T) {
	// pm25=60 is critical while pm10=30 is within threshold.
	c := NewClassifier(data.DefaultThresholds())

	alert := c.Classify(testReading(60.0, 30.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.MetricPM25, alert.Metric)
	assert.Equal(t, data.SeverityCritical, alert.Severity)
}

func TestClassify_BothBreach_HigherTierWins(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	// pm25 LOW vs pm10 CRITICAL: pm10 wins.
	alert := c.Classify(testReading(26.0, 150.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.MetricPM10, alert.Metric)
	assert.Equal(t, data.SeverityCritical, alert.Severity)

	// pm25 HIGH vs pm10 MODERATE: pm25 wins.
	alert = c.Classify(testReading(40.0, 60.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.MetricPM25, alert.Metric)
	assert.Equal(t, data.SeverityHigh, alert.Severity)
}

func TestClassify_BothBreach_TieGoesToPM25(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	// Both MODERATE.
	alert := c.Classify(testReading(30.0, 60.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.MetricPM25, alert.Metric)
	assert.Equal(t, data.SeverityModerate, alert.Severity)
}

func TestClassify_SeverityMonotonicInPM25(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	prev := 0
	for pm25 := 20.0; pm25 <= 120.0; pm25 += 0.5 {
		rank := 0
		if alert := c.Classify(testReading(pm25, 10.0)); alert != nil {
			rank = alert.Severity.Rank()
		}
		assert.GreaterOrEqual(t, rank, prev, "severity dropped at pm25=%.1f", pm25)
		prev = rank
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())
	r := testReading(42.0, 33.0)

	first := c.Classify(r)
	second := c.Classify(r)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Severity, second.Severity)
	assert.Equal(t, first.Metric, second.Metric)
	assert.Equal(t, first.Message, second.Message)
	assert.NotEqual(t, first.ID, second.ID, "each alert gets its own id")
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := NewClassifier(data.Thresholds{PM25Safe: 10.0, PM10Safe: 20.0})

	assert.Nil(t, c.Classify(testReading(10.0, 20.0)))

	alert := c.Classify(testReading(25.0, 5.0))
	require.NotNil(t, alert)
	assert.Equal(t, data.SeverityCritical, alert.Severity, "2.5x a custom threshold is critical")
}

func TestClassify_MessageNamesBreachingMetrics(t *testing.T) {
	c := NewClassifier(data.DefaultThresholds())

	alert := c.Classify(testReading(60.0, 120.0))
	require.NotNil(t, alert)
	assert.Contains(t, alert.Message, "PM2.5: 60.00")
	assert.Contains(t, alert.Message, "PM10: 120.00")
	assert.Contains(t, alert.Message, "MOTE-001")
	assert.Contains(t, alert.Message, string(alert.Severity))
}
