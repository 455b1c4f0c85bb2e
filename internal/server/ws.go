package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/yubi/internal/metrics"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveHub broadcasts JSON messages to WebSocket clients.
type LiveHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	metrics *metrics.Metrics
}

// NewLiveHub creates a LiveHub. m may be nil.
func NewLiveHub(m *metrics.Metrics) *LiveHub {
	return &LiveHub{
		clients: make(map[*websocket.Conn]bool),
		metrics: m,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.LiveClients.Add(1)
	}

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.LiveClients.Add(-1)
		}
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends v as JSON to every client. Clients that fail to receive
// are closed.
func (h *LiveHub) Broadcast(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}
