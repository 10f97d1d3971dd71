package api

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/ledcycle/internal/api/models"
	"github.com/smazurov/ledcycle/internal/events"
	"github.com/smazurov/ledcycle/internal/logging"
	"github.com/smazurov/ledcycle/internal/preset"
	"github.com/smazurov/ledcycle/internal/status"
)

const testUser, testPass = "admin", "secret"

type fixture struct {
	server  *Server
	bus     *events.Bus
	tracker *status.Tracker
}

func newFixture(t *testing.T, withAuth bool) *fixture {
	t.Helper()

	table, err := preset.New(3, preset.Default()...)
	if err != nil {
		t.Fatal(err)
	}
	bus := events.New()
	tracker := status.NewTracker(bus, slog.New(slog.DiscardHandler))
	tracker.Start()
	t.Cleanup(tracker.Stop)

	opts := &Options{
		Table:    table,
		Tracker:  tracker,
		EventBus: bus,
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "ledcycle_engine_cycles_total 0\n")
		}),
		ChannelLevels: func() []uint8 { return []uint8{1, 2, 3} },
	}
	if withAuth {
		opts.AuthUsername = testUser
		opts.AuthPassword = testPass
	}
	return &fixture{server: NewServer(opts), bus: bus, tracker: tracker}
}

func (f *fixture) get(t *testing.T, path string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth {
		req.SetBasicAuth(testUser, testPass)
	}
	rec := httptest.NewRecorder()
	f.server.GetMux().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndVersionSkipAuth(t *testing.T) {
	f := newFixture(t, true)

	for _, path := range []string{"/api/health", "/api/version"} {
		if rec := f.get(t, path, false); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	health := decode[models.HealthData](t, f.get(t, "/api/health", false))
	if health.Status != "ok" {
		t.Errorf("health status = %q", health.Status)
	}
}

func TestSecuredRoutesRequireAuth(t *testing.T) {
	f := newFixture(t, true)

	for _, path := range []string{"/api/status", "/api/presets", "/api/logs"} {
		rec := f.get(t, path, false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without auth = %d, want 401", path, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") == "" {
			t.Errorf("GET %s: missing WWW-Authenticate header", path)
		}
		if rec := f.get(t, path, true); rec.Code != http.StatusOK {
			t.Errorf("GET %s with auth = %d, want 200", path, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth(testUser, "wrong")
	rec := httptest.NewRecorder()
	f.server.GetMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", rec.Code)
	}

	creds := base64.StdEncoding.EncodeToString([]byte(testUser + ":" + testPass))
	if rec := f.get(t, "/api/status?auth="+creds, false); rec.Code != http.StatusOK {
		t.Errorf("query auth = %d, want 200", rec.Code)
	}
}

func TestAuthDisabledWithoutCredentials(t *testing.T) {
	f := newFixture(t, false)
	if rec := f.get(t, "/api/status", false); rec.Code != http.StatusOK {
		t.Errorf("GET /api/status = %d, want 200", rec.Code)
	}
}

func TestStatusReflectsEngineEvents(t *testing.T) {
	f := newFixture(t, false)

	initial := decode[models.StatusData](t, f.get(t, "/api/status", false))
	if initial.Phase != status.PhaseStarting {
		t.Errorf("initial phase = %q, want %q", initial.Phase, status.PhaseStarting)
	}
	if initial.Targets == nil {
		t.Error("targets should encode as an empty list, not null")
	}

	waitPhase := func(phase string) models.StatusData {
		t.Helper()
		deadline := time.Now().Add(time.Second)
		for {
			got := decode[models.StatusData](t, f.get(t, "/api/status", false))
			if got.Phase == phase || time.Now().After(deadline) {
				return got
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	// Event types are delivered independently, so publish one phase at a time.
	f.bus.Publish(events.CrossfadeStartedEvent{PresetIndex: 1, PresetName: "green", Targets: []int{80, 255, 80}})
	if got := waitPhase(status.PhaseCrossfading); got.Phase != status.PhaseCrossfading {
		t.Fatalf("phase = %q, want %q", got.Phase, status.PhaseCrossfading)
	}
	f.bus.Publish(events.PresetHeldEvent{PresetIndex: 1, PresetName: "green", Passes: 176})
	got := waitPhase(status.PhaseHolding)

	if got.Phase != status.PhaseHolding || got.PresetIndex != 1 || got.LastPasses != 176 {
		t.Fatalf("status = %+v", got)
	}
	if len(got.Targets) != 3 || got.Targets[1] != 255 {
		t.Errorf("targets = %v", got.Targets)
	}
	if len(got.Levels) != 3 || got.Levels[2] != 3 {
		t.Errorf("levels = %v, want [1 2 3]", got.Levels)
	}
}

func TestStatusWithoutTracker(t *testing.T) {
	s := NewServer(&Options{ChannelLevels: func() []uint8 { return nil }})
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.GetMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/status = %d, want 503", rec.Code)
	}
}

func TestListPresets(t *testing.T) {
	f := newFixture(t, false)

	data := decode[models.PresetListData](t, f.get(t, "/api/presets", false))
	if data.Count != 5 || len(data.Presets) != 5 || data.Channels != 3 {
		t.Fatalf("presets = %+v", data)
	}
	first := data.Presets[0]
	if first.Index != 0 || first.Levels[0] != 255 || first.Levels[1] != 80 || first.Levels[2] != 80 {
		t.Errorf("first preset = %+v", first)
	}
	if last := data.Presets[4]; last.Index != 4 || last.Levels[2] != 120 {
		t.Errorf("last preset = %+v", last)
	}
}

func TestLogsFromRingBuffer(t *testing.T) {
	logging.Initialize(logging.Config{Level: "debug", Format: "text"})
	f := newFixture(t, false)

	logger := logging.GetLogger("engine")
	logger.Debug("Crossfade started", "preset", 0)
	logger.Warn("Output write failed", "channel", 1)
	logger.Info("Preset held", "preset", 0)

	// Request logging lands in the buffer too, so query the newest entry first.
	limited := decode[models.LogsData](t, f.get(t, "/api/logs?limit=1&level=info", false))
	if limited.Count != 1 || limited.Entries[0].Message != "Preset held" {
		t.Errorf("limited logs = %+v", limited)
	}

	data := decode[models.LogsData](t, f.get(t, "/api/logs?level=warn", false))
	if data.Count != 1 || data.Entries[0].Message != "Output write failed" {
		t.Fatalf("warn logs = %+v", data)
	}
	entry := data.Entries[0]
	if entry.Module != "engine" || !strings.Contains(entry.Line, "[WARN]") || !strings.Contains(entry.Line, "channel=1") {
		t.Errorf("entry = %+v", entry)
	}

	if rec := f.get(t, "/api/logs?level=loud", false); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown level = %d, want 400", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, true)

	rec := f.get(t, "/metrics", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ledcycle_engine_cycles_total") {
		t.Errorf("metrics body = %q", rec.Body.String())
	}
}

func TestWriteMethodsNotRouted(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/status", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	f.server.GetMux().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/status = %d, want 405", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	rec := httptest.NewRecorder()
	f.server.GetMux().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS /api/status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method, path string
		status       int
		want         slog.Level
	}{
		{"GET", "/api/status", 200, slog.LevelDebug},
		{"OPTIONS", "/api/presets", 204, slog.LevelDebug},
		{"GET", "/api/presets", 200, slog.LevelInfo},
		{"GET", "/api/status", 401, slog.LevelWarn},
		{"GET", "/api/status", 503, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.path, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s %s %d) = %v, want %v", tt.method, tt.path, tt.status, got, tt.want)
		}
	}
}

func TestEventStream(t *testing.T) {
	f := newFixture(t, false)
	ts := httptest.NewServer(f.server.GetMux())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Keep publishing until the subscriber has connected and seen one event.
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.bus.Publish(events.PresetAdvancedEvent{From: 4, To: 0, Wrapped: true})
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventName string
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			eventName = name
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var ev events.PresetAdvancedEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				t.Fatalf("decode event %q: %v", data, err)
			}
			if eventName != "preset-advanced" || ev.To != 0 || !ev.Wrapped {
				t.Errorf("event %q = %+v", eventName, ev)
			}
			return
		}
	}
	t.Fatal("stream ended without an event")
}
