// internal/alerting/alerter.go
package alerting

import (
	"log"

	"github.com/malikhammadd/dust-detector/internal/data"
	"github.com/malikhammadd/dust-detector/internal/websocket"
)

// Alerter is the single sink for the orchestrator's alert path: it
// records to the log and fans out to connected websocket clients.
type Alerter struct {
	log *Log
	hub *websocket.Hub
	// Add other notification channels here (e.g., email client, SMS service)
}

func NewAlerter(alertLog *Log, hub *websocket.Hub) *Alerter {
	return &Alerter{log: alertLog, hub: hub}
}

// Process records an alert and pushes it to subscribers.
func (a *Alerter) Process(alert data.Alert) {
	a.log.Record(alert)
	log.Printf("ALERT: %s", alert.Message)

	if a.hub != nil {
		a.hub.BroadcastAlert(alert)
	}
}

// Log exposes the underlying history for the query surface.
func (a *Alerter) Log() *Log {
	return a.log
}
