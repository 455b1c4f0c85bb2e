package api

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"testing"
	"time"

	"github.com/ayusman/yubi/internal/plugin"
	"github.com/ayusman/yubi/internal/store"
)

func seedReadings(t *testing.T, s *store.Store) {
	t.Helper()

	base := time.Now().Add(-time.Minute)
	rows := []struct {
		label   string
		outcome string
		tips    []image.Point
	}{
		{"rock", "detected", nil},
		{"paper", "detected", []image.Point{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}},
		{"paper", "detected", []image.Point{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}},
		{"", "no_hand", nil},
	}
	for i, row := range rows {
		rd := &store.Reading{
			ID:          string(rune('a' + i)),
			SkeletonID:  1,
			Side:        "left",
			Outcome:     row.outcome,
			FingerCount: len(row.tips),
			Label:       row.label,
			Fingertips:  row.tips,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := s.Readings().Create(rd); err != nil {
			t.Fatalf("failed to create reading: %v", err)
		}
	}
}

func TestReadingHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedReadings(t, s)
	handler := NewReadingHandler(s)

	tests := []struct {
		name  string
		path  string
		code  int
		count int
	}{
		{"default limit", "/api/readings", http.StatusOK, 4},
		{"limit", "/api/readings?limit=2", http.StatusOK, 2},
		{"zero means all", "/api/readings?limit=0", http.StatusOK, 4},
		{"bad limit", "/api/readings?limit=abc", http.StatusBadRequest, 0},
		{"negative limit", "/api/readings?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodGet, tt.path, "")
			if rec.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}

			var resp listReadingsResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Readings) != tt.count {
				t.Fatalf("expected %d readings, got %d", tt.count, len(resp.Readings))
			}
			if resp.Readings[0].ID != "d" {
				t.Errorf("first reading = %s, want newest (d)", resp.Readings[0].ID)
			}
		})
	}
}

func TestReadingHandler_Fingertips(t *testing.T) {
	s := newTestStore(t)
	seedReadings(t, s)

	rec := doRequest(NewReadingHandler(s), http.MethodGet, "/api/readings", "")
	var resp listReadingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	for _, rd := range resp.Readings {
		if rd.Fingertips == nil {
			t.Errorf("reading %s: fingertips decoded as null", rd.ID)
		}
		if len(rd.Fingertips) != rd.FingerCount {
			t.Errorf("reading %s: %d fingertips, finger_count %d", rd.ID, len(rd.Fingertips), rd.FingerCount)
		}
	}
}

func TestReadingHandler_Stats(t *testing.T) {
	s := newTestStore(t)
	seedReadings(t, s)

	rec := doRequest(NewReadingHandler(s), http.MethodGet, "/api/readings/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if resp.Counts["paper"] != 2 || resp.Counts["rock"] != 1 {
		t.Errorf("counts = %v", resp.Counts)
	}
}

func TestReadingHandler_Routing(t *testing.T) {
	handler := NewReadingHandler(newTestStore(t))

	if rec := doRequest(handler, http.MethodPost, "/api/readings", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
	if rec := doRequest(handler, http.MethodGet, "/api/readings/other", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown sub path status = %d", rec.Code)
	}
}

type fakeLister []*plugin.Plugin

func (f fakeLister) List() []*plugin.Plugin { return f }

func TestPluginHandler(t *testing.T) {
	handler := NewPluginHandler(fakeLister{
		{Manifest: plugin.Manifest{Name: "command", Actions: []string{"run", "notify"}}},
	})

	rec := doRequest(handler, http.MethodGet, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp listPluginsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Plugins) != 1 || resp.Plugins[0].Name != "command" || len(resp.Plugins[0].Actions) != 2 {
		t.Errorf("plugins = %+v", resp.Plugins)
	}

	if rec := doRequest(handler, http.MethodDelete, "/api/plugins", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d", rec.Code)
	}
}

type fakeController struct {
	enabled bool
	err     error
}

func (c *fakeController) Enabled() bool { return c.enabled }

func (c *fakeController) SetEnabled(enabled bool) error {
	if c.err != nil {
		return c.err
	}
	c.enabled = enabled
	return nil
}

func TestStatusHandler(t *testing.T) {
	control := &fakeController{enabled: true}
	handler := NewStatusHandler(control)

	decode := func(t *testing.T, body []byte) bool {
		t.Helper()
		var resp statusBody
		if err := json.Unmarshal(body, &resp); err != nil || resp.Enabled == nil {
			t.Fatalf("bad status body %s: %v", body, err)
		}
		return *resp.Enabled
	}

	rec := doRequest(handler, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK || !decode(t, rec.Body.Bytes()) {
		t.Errorf("GET = %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(handler, http.MethodPut, "/api/status", `{"enabled":false}`)
	if rec.Code != http.StatusOK || decode(t, rec.Body.Bytes()) {
		t.Errorf("PUT = %d %s", rec.Code, rec.Body.String())
	}
	if control.enabled {
		t.Error("controller was not disabled")
	}

	tests := []struct {
		name   string
		method string
		body   string
		err    error
		want   int
	}{
		{"missing field", http.MethodPut, `{}`, nil, http.StatusBadRequest},
		{"invalid json", http.MethodPut, `{`, nil, http.StatusBadRequest},
		{"controller error", http.MethodPut, `{"enabled":true}`, errors.New("disk full"), http.StatusInternalServerError},
		{"bad method", http.MethodPost, `{}`, nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control.err = tt.err
			rec := doRequest(handler, tt.method, "/api/status", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
