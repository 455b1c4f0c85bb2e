package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/ayusman/yubi/internal/metrics"
)

// StreamHub fans annotated JPEG frames out to MJPEG clients. Slow clients
// skip frames instead of blocking the publisher.
type StreamHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	metrics *metrics.Metrics
}

// NewStreamHub creates a StreamHub. m may be nil.
func NewStreamHub(m *metrics.Metrics) *StreamHub {
	return &StreamHub{
		clients: make(map[chan []byte]struct{}),
		metrics: m,
	}
}

// Publish offers a JPEG to every connected client.
func (h *StreamHub) Publish(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- jpeg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *StreamHub) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.StreamClients.Add(1)
	}
	return ch
}

func (h *StreamHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.StreamClients.Add(-1)
	}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case jpeg := <-ch:
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
			if _, err := w.Write(jpeg); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
