// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
)

// Envelope wraps every broadcast so consumers can demux the stream.
type Envelope struct {
	Type    string      `json:"type"` // "reading" or "alert"
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of connected visualization clients and fans
// broadcasts out to them. Slow clients are dropped, never waited on.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run owns the client set until ctx is cancelled; all membership
// changes and broadcasts go through this loop, so no lock is needed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Printf("WebSocket client registered: %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("WebSocket client unregistered: %s", client.conn.RemoteAddr())
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client is blocked or gone, drop it.
					log.Printf("WebSocket client %s send buffer full, removing", client.conn.RemoteAddr())
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastReading sends a reading envelope to all clients.
func (h *Hub) BroadcastReading(reading interface{}) {
	h.send(Envelope{Type: "reading", Payload: reading})
}

// BroadcastAlert sends an alert envelope to all clients.
func (h *Hub) BroadcastAlert(alert interface{}) {
	h.send(Envelope{Type: "alert", Payload: alert})
}

func (h *Hub) send(env Envelope) {
	messageBytes, err := json.Marshal(env)
	if err != nil {
		log.Printf("Error marshalling %s for broadcast: %v", env.Type, err)
		return
	}
	select {
	case h.broadcast <- messageBytes:
	default:
		// No listener draining the hub; drop rather than block a tick.
	}
}
