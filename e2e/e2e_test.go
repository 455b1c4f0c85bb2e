package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/yubi/internal/app"
	"github.com/ayusman/yubi/internal/metrics"
	"github.com/ayusman/yubi/internal/sensor"
	"github.com/ayusman/yubi/internal/server"
	"github.com/ayusman/yubi/internal/store"
	"github.com/ayusman/yubi/internal/synth"
)

func TestE2E_SyntheticRecording(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	recording := filepath.Join(tmpDir, "recording")

	scene := synth.NewScene(sensor.DefaultWidth, sensor.DefaultHeight)
	if err := scene.WriteRecording(recording, 9, 3, 60); err != nil {
		t.Fatalf("WriteRecording() error = %v", err)
	}

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	m := metrics.New()
	stream := server.NewStreamHub(m)
	live := server.NewLiveHub(m)

	application := app.New(app.Config{
		Store:     s,
		Sensor:    sensor.NewRecordingSensor(recording, 0, false),
		PluginDir: filepath.Join(tmpDir, "plugins"),
		Metrics:   m,
		Stream:    stream,
		Live:      live,
	})
	if err := application.DiscoverPlugins(); err != nil {
		t.Fatalf("DiscoverPlugins() error = %v", err)
	}

	srv := server.New(server.Config{
		Store:   s,
		Plugins: application.PluginManager(),
		Stream:  stream,
		Live:    live,
		Metrics: m,
		Control: application,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("RunRecording", func(t *testing.T) {
		if err := application.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		select {
		case <-application.Done():
		case <-time.After(30 * time.Second):
			t.Fatal("recording did not finish")
		}
		application.Stop()
	})

	t.Run("ReadingStats", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/readings/stats")
		if err != nil {
			t.Fatalf("GET stats error = %v", err)
		}
		defer resp.Body.Close()

		var stats struct {
			Total  int            `json:"total"`
			Counts map[string]int `json:"counts"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			t.Fatalf("decode error = %v", err)
		}

		// 9 frames, two hands each, every pose held for 3 frames per hand.
		if stats.Total != 18 {
			t.Errorf("total = %d, want 18", stats.Total)
		}
		for _, label := range []string{"rock", "scissors", "paper"} {
			if stats.Counts[label] != 6 {
				t.Errorf("%s = %d, want 6", label, stats.Counts[label])
			}
		}
	})

	t.Run("LatestReadings", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/readings?limit=2")
		if err != nil {
			t.Fatalf("GET readings error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Readings []struct {
				Side        string `json:"side"`
				Label       string `json:"label"`
				FingerCount int    `json:"finger_count"`
			} `json:"readings"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if len(listed.Readings) != 2 {
			t.Fatalf("got %d readings, want 2", len(listed.Readings))
		}
		for _, rd := range listed.Readings {
			if rd.Label == "" {
				t.Errorf("reading without label: %+v", rd)
			}
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET metrics error = %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		for _, want := range []string{
			"yubi_frames_total 9",
			`yubi_readings_total{outcome="detected"} 18`,
			`yubi_gestures_total{label="paper"} 6`,
		} {
			if !strings.Contains(string(body), want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})

	t.Run("Toggle", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/status", strings.NewReader(`{"enabled":false}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT status error = %v", err)
		}
		resp.Body.Close()

		if application.Enabled() {
			t.Error("application still enabled")
		}
		v, err := s.Settings().Get("enabled")
		if err != nil || v != "false" {
			t.Errorf("stored setting = %q, %v", v, err)
		}
	})
}
