package api

import (
	"encoding/json"
	"net/http"
)

// Controller switches estimation on and off.
type Controller interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// StatusHandler reports and changes whether estimation runs.
type StatusHandler struct {
	control Controller
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(c Controller) *StatusHandler {
	return &StatusHandler{control: c}
}

type statusBody struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req statusBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.control.SetEnabled(*req.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update status")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	enabled := h.control.Enabled()
	writeJSON(w, http.StatusOK, statusBody{Enabled: &enabled})
}
