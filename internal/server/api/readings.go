package api

import (
	"image"
	"net/http"
	"strconv"

	"github.com/ayusman/yubi/internal/store"
)

// DefaultReadingLimit is how many readings GET /api/readings returns when
// no limit is given.
const DefaultReadingLimit = 50

// ReadingHandler serves the reading history.
type ReadingHandler struct {
	store *store.Store
}

// NewReadingHandler creates a new ReadingHandler with the given store.
func NewReadingHandler(s *store.Store) *ReadingHandler {
	return &ReadingHandler{store: s}
}

type readingResponse struct {
	ID          string        `json:"id"`
	SkeletonID  int           `json:"skeleton_id"`
	Side        string        `json:"side"`
	Outcome     string        `json:"outcome"`
	FingerCount int           `json:"finger_count"`
	Label       string        `json:"label"`
	Fingertips  []image.Point `json:"fingertips"`
	CreatedAt   string        `json:"created_at"`
}

type listReadingsResponse struct {
	Readings []readingResponse `json:"readings"`
}

type statsResponse struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// ServeHTTP routes /api/readings and /api/readings/stats.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch subPath(r, "/api/readings") {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *ReadingHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultReadingLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	readings, err := h.store.Readings().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list readings")
		return
	}

	response := listReadingsResponse{
		Readings: make([]readingResponse, 0, len(readings)),
	}
	for _, rd := range readings {
		tips := rd.Fingertips
		if tips == nil {
			tips = []image.Point{}
		}
		response.Readings = append(response.Readings, readingResponse{
			ID:          rd.ID,
			SkeletonID:  rd.SkeletonID,
			Side:        rd.Side,
			Outcome:     rd.Outcome,
			FingerCount: rd.FingerCount,
			Label:       rd.Label,
			Fingertips:  tips,
			CreatedAt:   formatTime(rd.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ReadingHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Readings().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count readings")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	writeJSON(w, http.StatusOK, statsResponse{Total: total, Counts: counts})
}
