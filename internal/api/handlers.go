// internal/api/handlers.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gwebsocket "github.com/gorilla/websocket" // Alias to avoid name conflict

	"github.com/malikhammadd/dust-detector/internal/alerting"
	"github.com/malikhammadd/dust-detector/internal/auth"
	"github.com/malikhammadd/dust-detector/internal/data"
	"github.com/malikhammadd/dust-detector/internal/sim"
	"github.com/malikhammadd/dust-detector/internal/stats"
	"github.com/malikhammadd/dust-detector/internal/storage"
	"github.com/malikhammadd/dust-detector/internal/websocket"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Visualization clients connect from anywhere
}

const defaultQueryLimit = 50

// Handler serves the pipeline's query and control surface. All reads
// go through snapshot copies; nothing here touches live buffers.
type Handler struct {
	orch     *sim.Orchestrator
	store    *storage.ReadingStore
	engine   *stats.Engine
	alertLog *alerting.Log
	hub      *websocket.Hub
	auth     *auth.Manager
}

func NewHandler(orch *sim.Orchestrator, store *storage.ReadingStore, engine *stats.Engine,
	alertLog *alerting.Log, hub *websocket.Hub, authManager *auth.Manager) *Handler {

	return &Handler{
		orch:     orch,
		store:    store,
		engine:   engine,
		alertLog: alertLog,
		hub:      hub,
		auth:     authManager,
	}
}

// HandleSnapshot returns the full export structure for persistence and
// visualization collaborators.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.orch.Snapshot())
}

func (h *Handler) HandleReadings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.AllRecent(limitParam(r)))
}

func (h *Handler) HandleMoteReadings(w http.ResponseWriter, r *http.Request) {
	moteID := chi.URLParam(r, "moteID")
	writeJSON(w, h.store.Recent(moteID, limitParam(r)))
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	statistics := h.engine.AllSnapshots()
	statistics[data.GlobalMoteID] = h.engine.GlobalSnapshot()
	writeJSON(w, statistics)
}

func (h *Handler) HandleMoteStatistics(w http.ResponseWriter, r *http.Request) {
	moteID := chi.URLParam(r, "moteID")
	if moteID == data.GlobalMoteID {
		writeJSON(w, h.engine.GlobalSnapshot())
		return
	}
	writeJSON(w, h.engine.Snapshot(moteID))
}

func (h *Handler) HandlePollutionMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.PollutionMap(h.orch.Locations()))
}

func (h *Handler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.alertLog.Recent(limitParam(r)))
}

func (h *Handler) HandleMoteAlerts(w http.ResponseWriter, r *http.Request) {
	moteID := chi.URLParam(r, "moteID")
	writeJSON(w, h.alertLog.ByMote(moteID))
}

func (h *Handler) HandleAlertCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.alertLog.CountBySeverity())
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"state":          h.orch.State().String(),
		"waves":          h.orch.Waves(),
		"total_readings": h.store.TotalAppended(),
		"alert_count":    h.alertLog.Count(),
	})
}

// HandleStart transitions the simulation out of IDLE. Auth-guarded.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"state": h.orch.State().String()})
}

// HandleStop requests cooperative shutdown of the tick loop.
func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.orch.Stop()
	writeJSON(w, map[string]string{"state": h.orch.State().String()})
}

// HandleToken exchanges user credentials for a JWT.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ok, role, err := h.auth.AuthenticateUser(creds.Username, creds.Password)
	if !ok {
		log.Printf("Failed login for %q: %v", creds.Username, err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.auth.GenerateJWT(creds.Username, role)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

// HandleWebSocket upgrades connections and registers clients with the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn)
	go client.WritePump()
	go client.ReadPump() // Must run ReadPump to handle control messages (close, pong)

	log.Printf("WebSocket connection established: %s", conn.RemoteAddr())
}

func limitParam(r *http.Request) int {
	if raw := r.URL.Query().Get("n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultQueryLimit
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
