// Package server provides the HTTP server for the hand gesture service.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/yubi/internal/metrics"
	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/server/api"
	"github.com/ayusman/yubi/internal/store"
)

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	StaticDir string
	Store     *store.Store
	Plugins   *plugin.Manager
	Stream    *StreamHub
	Live      *LiveHub
	Metrics   *metrics.Metrics
	Control   api.Controller
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var resolver api.PluginResolver
		if s.config.Plugins != nil {
			resolver = s.config.Plugins
		}
		actions := api.NewActionHandler(s.config.Store, resolver)
		s.mux.Handle("/api/actions", actions)
		s.mux.Handle("/api/actions/", actions)

		readings := api.NewReadingHandler(s.config.Store)
		s.mux.Handle("/api/readings", readings)
		s.mux.Handle("/api/readings/", readings)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.Control != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Control))
	}

	if s.config.Stream != nil {
		s.mux.Handle("/api/stream", s.config.Stream)
	}

	if s.config.Live != nil {
		s.mux.Handle("/api/live", s.config.Live)
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Control != nil {
		response["enabled"] = s.config.Control.Enabled()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
