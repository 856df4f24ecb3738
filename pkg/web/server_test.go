package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-eyemouse/pkg/tracking"
)

type fakeSource struct {
	stats  tracking.Stats
	config tracking.Config
}

func (f *fakeSource) Stats() tracking.Stats   { return f.stats }
func (f *fakeSource) Config() tracking.Config { return f.config }

func newFake() *fakeSource {
	return &fakeSource{
		stats: tracking.Stats{
			Session: "s-1",
			Frames:  42,
			Clicks:  3,
			Pointer: tracking.ScreenPoint{X: 960, Y: 540},
		},
		config: tracking.DefaultConfig(),
	}
}

func getJSON(t *testing.T, app *fiber.App, path string, v any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("GET %s: unmarshal %s: %v", path, body, err)
		}
	}
	return resp.StatusCode
}

func TestStatusEndpoint(t *testing.T) {
	s := NewServer(":0", newFake())

	var stats tracking.Stats
	if code := getJSON(t, s.App(), "/api/status", &stats); code != 200 {
		t.Fatalf("Status code = %d", code)
	}
	if stats.Session != "s-1" || stats.Frames != 42 || stats.Clicks != 3 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.Pointer.X != 960 || stats.Pointer.Y != 540 {
		t.Errorf("Pointer = %+v", stats.Pointer)
	}
}

func TestConfigEndpoint(t *testing.T) {
	s := NewServer(":0", newFake())

	var cfg map[string]any
	getJSON(t, s.App(), "/api/config", &cfg)

	if cfg["ear_threshold"] != 0.25 {
		t.Errorf("ear_threshold = %v, want 0.25", cfg["ear_threshold"])
	}
	if cfg["dwell_threshold"] != "2s" {
		t.Errorf("dwell_threshold = %v, want 2s", cfg["dwell_threshold"])
	}
	if cfg["frame_skip"] != float64(5) {
		t.Errorf("frame_skip = %v, want 5", cfg["frame_skip"])
	}
}

func TestEventsBuffer(t *testing.T) {
	s := NewServer(":0", newFake())

	for i := 0; i < maxEvents+25; i++ {
		s.OnEvent(tracking.Event{ID: "e", Type: tracking.CommandMove, X: i})
	}

	events := s.RecentEvents()
	if len(events) != maxEvents {
		t.Fatalf("Buffered %d events, want %d", len(events), maxEvents)
	}
	if events[0].X != 25 {
		t.Errorf("Oldest event X = %d, want 25", events[0].X)
	}

	var resp struct {
		Events []tracking.Event `json:"events"`
		Count  int              `json:"count"`
	}
	getJSON(t, s.App(), "/api/events?limit=3", &resp)
	if resp.Count != 3 || resp.Events[2].X != maxEvents+24 {
		t.Errorf("Limited events = %+v", resp)
	}
}

func TestIndex(t *testing.T) {
	s := NewServer(":0", newFake())
	resp, err := s.App().Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/ws/events") {
		t.Error("Dashboard page should subscribe to /ws/events")
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer(":0", newFake())
	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/status", nil))
	if err != nil {
		t.Fatalf("GET /ws/status: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusUpgradeRequired)
	}
}

func TestLiveStreams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(":18195", newFake())
	s.SetStatusInterval(20 * time.Millisecond)
	s.StartAsync(ctx)
	time.Sleep(100 * time.Millisecond)

	events, _, err := websocket.DefaultDialer.Dial("ws://localhost:18195/ws/events", nil)
	if err != nil {
		t.Fatalf("Dial events: %v", err)
	}
	defer events.Close()

	status, _, err := websocket.DefaultDialer.Dial("ws://localhost:18195/ws/status", nil)
	if err != nil {
		t.Fatalf("Dial status: %v", err)
	}
	defer status.Close()

	deadline := time.Now().Add(time.Second)
	for s.eventsHub.Viewers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	s.OnEvent(tracking.Event{ID: "click-1", Type: tracking.CommandClick})

	events.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := events.ReadMessage()
	if err != nil {
		t.Fatalf("Read event: %v", err)
	}
	var ev tracking.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Unmarshal event: %v", err)
	}
	if ev.ID != "click-1" || ev.Type != tracking.CommandClick {
		t.Errorf("Event = %+v", ev)
	}

	status.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err = status.ReadMessage()
	if err != nil {
		t.Fatalf("Read status: %v", err)
	}
	var stats tracking.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("Unmarshal status: %v", err)
	}
	if stats.Frames != 42 {
		t.Errorf("Pushed stats = %+v", stats)
	}
}
