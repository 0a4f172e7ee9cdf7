package cell

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrUnboundEvent is returned by Dispatcher.Invoke when no callback is
// bound to the requested cell and event.
var ErrUnboundEvent = errors.New("cell: no callback bound")

// Event is a fired callback as seen by a Sink.
type Event struct {
	CellID  string
	Name    string
	Payload map[string]any // bound with the callback by the document
	Data    map[string]any // supplied by the client when firing
}

// Sink receives fired events.
type Sink interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// HandleEvent implements Sink.
func (f SinkFunc) HandleEvent(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// LogSink returns a Sink that logs every event and never fails.
func LogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return SinkFunc(func(ctx context.Context, ev Event) error {
		logger.InfoContext(ctx, "cell event",
			"cell_id", ev.CellID,
			"event", ev.Name,
			"payload", ev.Payload,
			"data", ev.Data,
		)
		return nil
	})
}

// Callback is an opaque handle for one (cell, event) pair. Callbacks are
// compared by pointer; only a Dispatcher creates them.
type Callback struct {
	cellID string
	name   string
	d      *Dispatcher
}

// CellID returns the cell the callback belongs to.
func (c *Callback) CellID() string { return c.cellID }

// Name returns the event name, e.g. "onclick".
func (c *Callback) Name() string { return c.name }

// Payload returns the payload most recently bound with the callback.
func (c *Callback) Payload() map[string]any {
	c.d.mu.RLock()
	defer c.d.mu.RUnlock()
	return c.d.payloads[c.key()]
}

// Fire delivers the event to the dispatcher's sink.
func (c *Callback) Fire(ctx context.Context, data map[string]any) error {
	return c.d.sink.HandleEvent(ctx, Event{
		CellID:  c.cellID,
		Name:    c.name,
		Payload: c.Payload(),
		Data:    data,
	})
}

func (c *Callback) key() eventKey {
	return eventKey{cellID: c.cellID, name: c.name}
}

type eventKey struct {
	cellID string
	name   string
}

// Dispatcher mints callbacks and routes fired events to a Sink.
// It is safe for concurrent use.
type Dispatcher struct {
	sink Sink

	mu        sync.RWMutex
	callbacks map[eventKey]*Callback
	payloads  map[eventKey]map[string]any
}

// NewDispatcher creates a dispatcher delivering to sink. A nil sink logs
// events with the default logger.
func NewDispatcher(sink Sink) *Dispatcher {
	if sink == nil {
		sink = LogSink(nil)
	}
	return &Dispatcher{
		sink:      sink,
		callbacks: make(map[eventKey]*Callback),
		payloads:  make(map[eventKey]map[string]any),
	}
}

// Bind returns the callback for (cellID, name), creating it on first use.
// Rebinding replaces the payload but keeps the same pointer.
func (d *Dispatcher) Bind(cellID, name string, payload map[string]any) *Callback {
	k := eventKey{cellID: cellID, name: name}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.payloads[k] = payload
	if cb, ok := d.callbacks[k]; ok {
		return cb
	}
	cb := &Callback{cellID: cellID, name: name, d: d}
	d.callbacks[k] = cb
	return cb
}

// Binder mints callbacks. Both Dispatcher and Staged implement it.
type Binder interface {
	Bind(cellID, name string, payload map[string]any) *Callback
}

// Stage starts a binding set that replaces the dispatcher's bindings on
// Commit. Until then Invoke keeps routing to the current set, so a
// document that fails to decode can be dropped without touching it.
func (d *Dispatcher) Stage() *Staged {
	return &Staged{
		d:         d,
		callbacks: make(map[eventKey]*Callback),
		payloads:  make(map[eventKey]map[string]any),
	}
}

// Staged is a pending binding set created by Dispatcher.Stage.
type Staged struct {
	d         *Dispatcher
	callbacks map[eventKey]*Callback
	payloads  map[eventKey]map[string]any
}

// Bind records the binding in the staged set. Pairs the dispatcher
// already knows keep their callback pointer.
func (s *Staged) Bind(cellID, name string, payload map[string]any) *Callback {
	k := eventKey{cellID: cellID, name: name}
	s.payloads[k] = payload
	if cb, ok := s.callbacks[k]; ok {
		return cb
	}
	cb := s.d.Lookup(cellID, name)
	if cb == nil {
		cb = &Callback{cellID: cellID, name: name, d: s.d}
	}
	s.callbacks[k] = cb
	return cb
}

// Commit swaps the staged set in. Pairs that were not staged are unbound.
func (s *Staged) Commit() {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.callbacks = s.callbacks
	s.d.payloads = s.payloads
}

// Lookup returns the callback bound to (cellID, name), or nil.
func (d *Dispatcher) Lookup(cellID, name string) *Callback {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.callbacks[eventKey{cellID: cellID, name: name}]
}

// Invoke fires the callback bound to (cellID, name).
func (d *Dispatcher) Invoke(ctx context.Context, cellID, name string, data map[string]any) error {
	cb := d.Lookup(cellID, name)
	if cb == nil {
		return ErrUnboundEvent
	}
	return cb.Fire(ctx, data)
}

// Bound lists the bound (cell ID, event) pairs as "id/event", sorted.
func (d *Dispatcher) Bound() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.callbacks))
	for k := range d.callbacks {
		out = append(out, k.cellID+"/"+k.name)
	}
	sort.Strings(out)
	return out
}
