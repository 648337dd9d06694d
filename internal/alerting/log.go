// internal/alerting/log.go
package alerting

import (
	"sync"

	"github.com/malikhammadd/dust-detector/internal/data"
)

// Log is the append-only alert history for one simulation run. Records
// stay in detection order; nothing is deleted or reordered. All queries
// copy out so readers never hold the lock beyond the copy.
type Log struct {
	mu     sync.RWMutex
	alerts []data.Alert
}

func NewLog() *Log {
	return &Log{}
}

// Record appends an alert. Concurrent calls are serialized; detection
// order is preserved.
func (l *Log) Record(alert data.Alert) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, alert)
}

// Recent returns up to n of the most recent alerts, oldest first.
// n <= 0 returns the full history.
func (l *Log) Recent(n int) []data.Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.alerts) {
		n = len(l.alerts)
	}
	result := make([]data.Alert, n)
	copy(result, l.alerts[len(l.alerts)-n:])
	return result
}

// ByMote returns every alert raised for one mote, in detection order.
func (l *Log) ByMote(moteID string) []data.Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []data.Alert
	for _, a := range l.alerts {
		if a.MoteID == moteID {
			result = append(result, a)
		}
	}
	return result
}

// CountBySeverity tallies the full history per severity tier.
func (l *Log) CountBySeverity() map[data.Severity]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[data.Severity]int)
	for _, a := range l.alerts {
		counts[a.Severity]++
	}
	return counts
}

// Count returns the total number of alerts recorded this run.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.alerts)
}
