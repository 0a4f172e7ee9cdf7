package preview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/cells/internal/config"
	"github.com/vango-dev/cells/pkg/cell"
)

const buttonDoc = `{
  "title": "Demo",
  "root": {
    "id": "b1",
    "type": "Button",
    "extraData": {"events": {"onclick": {"action": "save"}}, "classes": ["btn"]},
    "replacements": {"contents": {"tag": "span", "children": [{"text": "Save"}]}}
  }
}`

type recordingSink struct {
	mu     sync.Mutex
	events []cell.Event
}

func (r *recordingSink) HandleEvent(ctx context.Context, ev cell.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func writeDoc(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T, body string) (*Server, string, *recordingSink) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.json")
	writeDoc(t, path, body)

	sink := &recordingSink{}
	srv, err := NewServer(Options{
		Config:   config.New(),
		Location: path,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sink:     sink,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv, path, sink
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPage(t *testing.T) {
	srv, _, _ := newTestServer(t, buttonDoc)
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Demo</title>",
		`data-cell-id="b1"`,
		`data-on-click="true"`,
		"<span>Save</span>",
		"window.CELLS_RELOAD = true;",
		"/_cells/event/",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageLoadFailure(t *testing.T) {
	srv, _, _ := newTestServer(t, buttonDoc)
	srv.location = filepath.Join(t.TempDir(), "gone.json")

	if _, err := srv.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should fail for a missing document")
	}
	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `data-error-code="E060"`) {
		t.Errorf("error page missing code:\n%s", rec.Body.String())
	}
}

func TestPageCellFailureHeader(t *testing.T) {
	srv, _, _ := newTestServer(t, `{"root": {"id": "x", "type": "Nope"}}`)
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Cells-Failures"); got != "1" {
		t.Errorf("X-Cells-Failures = %q", got)
	}
	if !strings.Contains(rec.Body.String(), `data-error-code="E001"`) {
		t.Error("placeholder missing")
	}
}

func TestEvent(t *testing.T) {
	srv, _, sink := newTestServer(t, buttonDoc)
	srv.Reload(context.Background())

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"bound", "/_cells/event/b1/onclick", `{"x": 1}`, http.StatusNoContent},
		{"empty body", "/_cells/event/b1/onclick", "", http.StatusNoContent},
		{"unbound", "/_cells/event/b1/onhover", "", http.StatusNotFound},
		{"unknown cell", "/_cells/event/zz/onclick", "", http.StatusNotFound},
		{"bad json", "/_cells/event/b1/onclick", "[1,", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	if len(sink.events) != 2 {
		t.Fatalf("events = %d, want 2", len(sink.events))
	}
	ev := sink.events[0]
	if ev.CellID != "b1" || ev.Name != "onclick" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Payload["action"] != "save" || ev.Data["x"] != float64(1) {
		t.Errorf("payload = %v, data = %v", ev.Payload, ev.Data)
	}
}

func postEvent(t *testing.T, h http.Handler, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec.Code
}

func TestReloadUnbindsRemovedEvents(t *testing.T) {
	srv, path, sink := newTestServer(t, buttonDoc)
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := srv.Dispatcher().Lookup("b1", "onclick")

	// Same handler again keeps its callback
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if srv.Dispatcher().Lookup("b1", "onclick") != before {
		t.Error("reloading an unchanged document should keep the callback")
	}

	writeDoc(t, path, `{"root": {"id": "b1", "type": "Button", "extraData": {"classes": ["btn"]}}}`)
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	if code := postEvent(t, srv.Handler(), "/_cells/event/b1/onclick"); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 after the handler was removed", code)
	}
	if len(sink.events) != 0 {
		t.Errorf("sink received %d events, want 0", len(sink.events))
	}
	if got := srv.Dispatcher().Bound(); len(got) != 0 {
		t.Errorf("Bound() = %v, want none", got)
	}
}

func TestReloadFailureKeepsBindings(t *testing.T) {
	srv, path, sink := newTestServer(t, buttonDoc)
	if _, err := srv.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The root binds a new payload before the untyped child fails to decode
	writeDoc(t, path, `{"root": {"id": "b1", "type": "Button",
		"extraData": {"events": {"onclick": {"action": "other"}, "onfocus": {}}},
		"namedChildren": {"contents": {"id": "c1"}}}}`)
	if _, err := srv.Reload(context.Background()); err == nil {
		t.Fatal("Reload() should fail for a child without a type")
	}

	if got := srv.Dispatcher().Bound(); len(got) != 1 || got[0] != "b1/onclick" {
		t.Errorf("Bound() = %v, want [b1/onclick]", got)
	}
	if code := postEvent(t, srv.Handler(), "/_cells/event/b1/onclick"); code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", code)
	}
	if len(sink.events) != 1 || sink.events[0].Payload["action"] != "save" {
		t.Errorf("events = %+v, want the previous payload", sink.events)
	}
}

func TestEventSinkPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.json")
	writeDoc(t, path, buttonDoc)
	srv, err := NewServer(Options{
		Location: path,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sink: cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
			panic("handler bug")
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	srv.Reload(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/_cells/event/b1/onclick", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestTreeEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, buttonDoc)

	if rec := get(t, srv.Handler(), "/_cells/tree"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before load = %d", rec.Code)
	}

	srv.Reload(context.Background())
	rec := get(t, srv.Handler(), "/_cells/tree")
	var node map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &node); err != nil {
		t.Fatalf("tree is not JSON: %v", err)
	}
	if node["tag"] != "button" {
		t.Errorf("tag = %v", node["tag"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, buttonDoc)
	srv.Reload(context.Background())
	srv.Handler().ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/_cells/event/b1/onclick", nil))

	rec := get(t, srv.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{"cells_rendered_total", "cells_events_total", "cells_patches_total"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestReloadCountsPatches(t *testing.T) {
	srv, path, _ := newTestServer(t, buttonDoc)
	ctx := context.Background()

	if n, err := srv.Reload(ctx); err != nil || n != 0 {
		t.Fatalf("first Reload() = %d, %v", n, err)
	}
	if n, _ := srv.Reload(ctx); n != 0 {
		t.Errorf("unchanged Reload() = %d patches", n)
	}

	writeDoc(t, path, strings.Replace(buttonDoc, `"btn"`, `"btn", "wide"`, 1))
	if n, _ := srv.Reload(ctx); n != 1 {
		t.Errorf("changed Reload() = %d patches, want 1", n)
	}
}

func TestReloadBroadcast(t *testing.T) {
	srv, path, _ := newTestServer(t, buttonDoc)
	ctx := context.Background()
	srv.Reload(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/_cells/reload", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	writeDoc(t, path, strings.Replace(buttonDoc, "Save", "Store", 1))
	srv.Reload(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MessageReload || msg.Patches != 1 {
		t.Errorf("message = %+v", msg)
	}

	writeDoc(t, path, "{not json")
	srv.Reload(ctx)
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MessageError || !strings.Contains(msg.Error, "E020") {
		t.Errorf("message = %+v", msg)
	}

	writeDoc(t, path, buttonDoc)
	srv.Reload(ctx)
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MessageClear {
		t.Errorf("message = %+v, want clear", msg)
	}
}

func TestNoReloadRoute(t *testing.T) {
	cfg := config.New()
	cfg.Preview.Reload = false
	cfg.Metrics.Enabled = false
	srv, err := NewServer(Options{Config: cfg, Location: "x.json"})
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(t, srv.Handler(), "/_cells/reload"); rec.Code != http.StatusNotFound {
		t.Errorf("reload status = %d", rec.Code)
	}
	if rec := get(t, srv.Handler(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestNewServerInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.Preview.Port = -1
	if _, err := NewServer(Options{Config: cfg}); err == nil {
		t.Error("NewServer() should validate the config")
	}
}
