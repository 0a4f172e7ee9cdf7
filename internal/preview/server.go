package preview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/cells/internal/config"
	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/internal/source"
	"github.com/vango-dev/cells/pkg/cell"
	"github.com/vango-dev/cells/pkg/middleware"
	"github.com/vango-dev/cells/pkg/render"
	"github.com/vango-dev/cells/pkg/vdom"
	"github.com/vango-dev/cells/pkg/wire"
)

// Options configures a Server.
type Options struct {
	// Config supplies preview, render and metrics settings.
	// Default: config.New()
	Config *config.Config

	// Location is the document path or s3://bucket/key URL.
	Location string

	// Reader fetches the document.
	// Default: source.NewReader(Config.Source.Region)
	Reader *source.Reader

	// Logger receives server and render logs.
	Logger *slog.Logger

	// Sink receives fired events. Default: cell.LogSink(Logger)
	Sink cell.Sink

	// Registry holds render metrics. Default: a fresh registry.
	Registry *prometheus.Registry
}

// Server is the preview server.
type Server struct {
	cfg        *config.Config
	location   string
	reader     *source.Reader
	logger     *slog.Logger
	registry   *prometheus.Registry
	tree       *cell.Tree
	dispatcher *cell.Dispatcher
	events     *middleware.Metrics
	renderer   render.RendererConfig
	hub        *Hub
	router     chi.Router

	mu      sync.RWMutex
	title   string
	node    *vdom.VNode
	failure error // last load or decode error; nil once the document loads
	cellErr error // cell failures of the last render

	runMu      sync.Mutex
	running    bool
	httpServer *http.Server
	watcher    *Watcher
}

// NewServer creates a server. The document is not read until Reload or
// Start is called.
func NewServer(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reader := opts.Reader
	if reader == nil {
		reader = source.NewReader(cfg.Source.Region)
	}
	sink := opts.Sink
	if sink == nil {
		sink = cell.LogSink(logger)
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	treeOpts := []cell.TreeOption{
		cell.WithLogger(logger),
		cell.WithMaxDepth(cfg.Render.MaxDepth),
		cell.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
	}
	var events *middleware.Metrics
	if cfg.Metrics.Enabled {
		treeOpts = append(treeOpts, cell.WithMetrics(cell.NewMetrics(
			cell.WithNamespace(cfg.Metrics.Namespace),
			cell.WithRegisterer(registry),
		)))
		events = middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(registry),
		)
	}
	sink = middleware.Chain(sink,
		middleware.Recover(logger),
		middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)),
		events.Middleware(),
	)

	s := &Server{
		cfg:        cfg,
		location:   opts.Location,
		reader:     reader,
		logger:     logger,
		registry:   registry,
		tree:       cell.NewTree(treeOpts...),
		dispatcher: cell.NewDispatcher(sink),
		events:     events,
		renderer:   render.RendererConfig{Pretty: cfg.Render.Pretty, Indent: cfg.Render.Indent},
		hub:        NewHub(logger),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/_cells/tree", s.handleTree)
	r.Post("/_cells/event/{cellID}/{event}", s.handleEvent)
	if s.cfg.Preview.Reload {
		r.Get("/_cells/reload", s.hub.ServeHTTP)
	}
	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dispatcher returns the dispatcher events are bound through.
func (s *Server) Dispatcher() *cell.Dispatcher {
	return s.dispatcher
}

// Hub returns the reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Reload reads, decodes and renders the document. Browsers are told to
// reload only when the rendered tree changed. It returns the number of
// patches between the old and new tree.
func (s *Server) Reload(ctx context.Context) (int, error) {
	doc, bindings, err := s.load(ctx)
	if err != nil {
		s.mu.Lock()
		s.failure = err
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "document failed to load", "location", s.location, "error", err)
		s.hub.NotifyError(err.Error())
		return 0, err
	}

	node, cellErr := s.tree.Render(ctx, doc.Root)

	s.mu.Lock()
	bindings.Commit()
	prev, hadFailure := s.node, s.failure != nil
	patches := vdom.Diff(prev, node)
	s.node = node
	s.title = doc.Title
	s.failure = nil
	s.cellErr = cellErr
	s.mu.Unlock()

	s.events.RecordPatches(len(patches))
	if hadFailure {
		s.hub.ClearError()
	}
	if prev != nil && len(patches) > 0 {
		s.logger.InfoContext(ctx, "document changed", "patches", len(patches))
		s.hub.NotifyReload(len(patches))
	}
	return len(patches), nil
}

// load decodes the document into a staged binding set. The caller
// commits it once the new tree is in place.
func (s *Server) load(ctx context.Context) (*wire.Document, *cell.Staged, error) {
	data, err := s.reader.Read(ctx, s.location)
	if err != nil {
		return nil, nil, err
	}
	f, err := wire.DetectFormat(source.Name(s.location), data)
	if err != nil {
		return nil, nil, err
	}
	bindings := s.dispatcher.Stage()
	doc, err := wire.Decode(data, f, bindings)
	if err != nil {
		return nil, nil, err
	}
	return doc, bindings, nil
}

// Start loads the document, starts the watcher for local documents and
// serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return nil
	}
	s.running = true
	s.runMu.Unlock()

	if _, err := s.Reload(ctx); err != nil {
		s.logger.Warn("serving without a document", "error", err)
	}

	if s.cfg.Preview.Reload && !source.IsS3(s.location) {
		w, err := NewWatcher(s.location, DefaultDebounce, s.logger)
		if err != nil {
			s.logger.Warn("live reload disabled", "error", err)
		} else {
			s.runMu.Lock()
			s.watcher = w
			s.runMu.Unlock()
			go w.Run(ctx, func() {
				s.Reload(ctx)
			})
		}
	}

	srv := &http.Server{
		Addr:              s.cfg.PreviewAddress(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.runMu.Lock()
	s.httpServer = srv
	s.runMu.Unlock()

	s.logger.Info("preview running", "url", s.cfg.PreviewURL(), "document", s.location)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down.
func (s *Server) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	node, title, failure, cellErr := s.node, s.title, s.failure, s.cellErr
	s.mu.RUnlock()

	if title == "" {
		title = s.cfg.Preview.Title
	}
	body := node
	if failure != nil {
		body = errorPage(failure)
	} else if body == nil {
		body = vdom.Empty()
	}

	page := render.PageData{
		Body:   body,
		Title:  title,
		Styles: []string{previewStyles},
		Scripts: []render.ScriptTag{
			{Inline: reloadFlag(s.cfg.Preview.Reload)},
			{Inline: clientScript},
		},
	}

	if cellErr != nil {
		w.Header().Set("X-Cells-Failures", countErrors(cellErr))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if failure != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := render.Page(page, s.renderer).Render(r.Context(), w); err != nil {
		s.logger.ErrorContext(r.Context(), "page render failed", "error", err)
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	node := s.node
	s.mu.RUnlock()

	if node == nil {
		http.Error(w, "no document loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(wire.FromVNode(node))
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	cellID := chi.URLParam(r, "cellID")
	event := chi.URLParam(r, "event")

	var data map[string]any
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			http.Error(w, "event data must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	err = s.dispatcher.Invoke(r.Context(), cellID, event, data)
	switch {
	case stderrors.Is(err, cell.ErrUnboundEvent):
		http.Error(w, "no callback bound to "+cellID+"/"+event, http.StatusNotFound)
	case err != nil:
		s.logger.ErrorContext(r.Context(), "event failed", "cell_id", cellID, "event", event, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func errorPage(err error) *vdom.VNode {
	return vdom.Div(
		vdom.Class("cells-load-error"),
		vdom.Data("error-code", cellerr.Code(err)),
		vdom.Pre(vdom.Text(err.Error())),
	)
}

func reloadFlag(on bool) string {
	if on {
		return "window.CELLS_RELOAD = true;"
	}
	return "window.CELLS_RELOAD = false;"
}

func countErrors(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return strconv.Itoa(len(joined.Unwrap()))
	}
	return "1"
}

const previewStyles = `.cell-error, .cells-load-error { border: 1px solid #c33; color: #c33; padding: .5em; }
.cell-error pre, .cells-load-error pre { margin: 0; white-space: pre-wrap; }`
