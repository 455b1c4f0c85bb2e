package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/yubi/internal/metrics"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStreamHub_ServeHTTP(t *testing.T) {
	m := metrics.New()
	hub := NewStreamHub(m)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	waitFor(t, func() bool { return hub.Clients() == 1 })
	if got := m.StreamClients.Load(); got != 1 {
		t.Errorf("StreamClients = %d, want 1", got)
	}

	payload := []byte("\xff\xd8fake-jpeg\xff\xd9")
	hub.Publish(payload)

	r := bufio.NewReader(resp.Body)
	var headers []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading part header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		headers = append(headers, line)
	}

	if len(headers) != 3 || headers[0] != "--frame" || headers[1] != "Content-Type: image/jpeg" {
		t.Fatalf("part headers = %q", headers)
	}
	if headers[2] != "Content-Length: 13" {
		t.Errorf("length header = %q", headers[2])
	}

	body := make([]byte, len(payload))
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("reading part body: %v", err)
	}
	if string(body) != string(payload) {
		t.Errorf("body = %q, want %q", body, payload)
	}

	cancel()
	waitFor(t, func() bool { return hub.Clients() == 0 })
	if got := m.StreamClients.Load(); got != 0 {
		t.Errorf("StreamClients = %d after disconnect, want 0", got)
	}
}

func TestStreamHub_PublishWithoutClients(t *testing.T) {
	hub := NewStreamHub(nil)
	hub.Publish([]byte("x"))
	if hub.Clients() != 0 {
		t.Error("expected no clients")
	}
}

func TestStreamHub_MethodNotAllowed(t *testing.T) {
	hub := NewStreamHub(nil)
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestLiveHub_Broadcast(t *testing.T) {
	m := metrics.New()
	hub := NewLiveHub(m)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 })
	if got := m.LiveClients.Load(); got != 1 {
		t.Errorf("LiveClients = %d, want 1", got)
	}

	if err := hub.Broadcast(map[string]any{"frame": 3, "label": "paper"}); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message %s: %v", data, err)
	}
	if msg["label"] != "paper" || msg["frame"] != float64(3) {
		t.Errorf("message = %v", msg)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
	waitFor(t, func() bool { return m.LiveClients.Load() == 0 })
}

func TestLiveHub_BroadcastUnencodable(t *testing.T) {
	hub := NewLiveHub(nil)
	if err := hub.Broadcast(make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}
