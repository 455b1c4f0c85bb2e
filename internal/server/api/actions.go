package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/yubi/internal/gesture"
	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/store"
)

// PluginResolver finds the plugin that serves an action.
type PluginResolver interface {
	Resolve(name, action string) (*plugin.Plugin, error)
}

// ActionHandler handles HTTP requests for action resources.
type ActionHandler struct {
	store   *store.Store
	plugins PluginResolver
}

// NewActionHandler creates a new ActionHandler with the given store. When
// plugins is non-nil, bindings must name an installed plugin action.
func NewActionHandler(s *store.Store, plugins PluginResolver) *ActionHandler {
	return &ActionHandler{store: s, plugins: plugins}
}

// ServeHTTP routes /api/actions and /api/actions/{id}.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := subPath(r, "/api/actions")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createActionRequest struct {
	Label      string          `json:"label"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
}

type updateActionRequest struct {
	Label      string          `json:"label"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type actionResponse struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
}

func toActionResponse(a *store.Action) actionResponse {
	config := a.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return actionResponse{
		ID:         a.ID,
		Label:      a.Label,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     config,
		Enabled:    a.Enabled,
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

// checkPlugin reports a client error message when the binding names a
// plugin action that is not installed.
func (h *ActionHandler) checkPlugin(name, action string) string {
	if h.plugins == nil {
		return ""
	}
	_, err := h.plugins.Resolve(name, action)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, plugin.ErrPluginNotFound):
		return "Plugin not found"
	case errors.Is(err, plugin.ErrActionNotSupported):
		return "Action not supported by plugin"
	default:
		return err.Error()
	}
}

func (h *ActionHandler) list(w http.ResponseWriter, r *http.Request) {
	actions, err := h.store.Actions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}

	response := listActionsResponse{
		Actions: make([]actionResponse, 0, len(actions)),
	}
	for _, a := range actions {
		response.Actions = append(response.Actions, toActionResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ActionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	action, err := h.store.Actions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}

	writeJSON(w, http.StatusOK, toActionResponse(action))
}

func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	label, err := gesture.ParseBindableLabel(req.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, "label must be one of rock, scissors, paper")
		return
	}
	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}
	if msg := h.checkPlugin(req.PluginName, req.ActionName); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.store.Actions().GetByLabel(string(label))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing action")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Action already bound to this label")
		return
	}

	action := &store.Action{
		ID:         uuid.New().String(),
		Label:      string(label),
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}

	if err := h.store.Actions().Create(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}

	writeJSON(w, http.StatusCreated, toActionResponse(action))
}

func (h *ActionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	action, err := h.store.Actions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}

	var req updateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label != "" {
		label, err := gesture.ParseBindableLabel(req.Label)
		if err != nil {
			writeError(w, http.StatusBadRequest, "label must be one of rock, scissors, paper")
			return
		}
		action.Label = string(label)
	}
	if req.PluginName != "" {
		action.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		action.ActionName = req.ActionName
	}
	if req.Config != nil {
		action.Config = req.Config
	}
	if req.Enabled != nil {
		action.Enabled = *req.Enabled
	}
	if msg := h.checkPlugin(action.PluginName, action.ActionName); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Actions().Update(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update action")
		return
	}

	writeJSON(w, http.StatusOK, toActionResponse(action))
}

func (h *ActionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Actions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete action")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
