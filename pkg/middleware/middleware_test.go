package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/cell"
)

var click = cell.Event{CellID: "b1", Name: "onclick", Payload: map[string]any{"n": 1}}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next cell.Sink) cell.Sink {
			return cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
				order = append(order, name)
				return next.HandleEvent(ctx, ev)
			})
		}
	}
	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
		order = append(order, "sink")
		return nil
	}), tag("a"), nil, tag("b"))

	if err := sink.HandleEvent(context.Background(), click); err != nil {
		t.Fatal(err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "sink" {
		t.Errorf("order = %v", order)
	}
}

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
		panic("boom")
	}), Recover(logger))

	err := sink.HandleEvent(context.Background(), click)
	if err == nil {
		t.Fatal("expected error from panicking sink")
	}
	if categorizeError(err) != "panic" {
		t.Errorf("category = %q", categorizeError(err))
	}
}

func TestOpenTelemetryPassesThrough(t *testing.T) {
	sentinel := errors.New("nope")
	var seen cell.Event
	var extracted bool

	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
		seen = ev
		return sentinel
	}), OpenTelemetry(
		WithTracer(noop.NewTracerProvider().Tracer("test")),
		WithIncludePayload(true),
		WithAttributeExtractor(func(ev cell.Event) []attribute.KeyValue {
			extracted = true
			return nil
		}),
	))

	if err := sink.HandleEvent(context.Background(), click); !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want sentinel", err)
	}
	if seen.CellID != "b1" || !extracted {
		t.Errorf("event = %+v, extracted = %v", seen, extracted)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	called := false
	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
		called = true
		return nil
	}), OpenTelemetry(
		WithTracerName("cells-test"),
		WithEventFilter(func(ev cell.Event) bool { return false }),
		WithAttributeExtractor(func(ev cell.Event) []attribute.KeyValue {
			t.Error("filtered events should not be traced")
			return nil
		}),
	))
	sink.HandleEvent(context.Background(), click)
	if !called {
		t.Error("filtered events still reach the sink")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("app"))

	fail := false
	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
		if fail {
			return cellerr.New("E061")
		}
		return nil
	}), m.Middleware())

	sink.HandleEvent(context.Background(), click)
	fail = true
	sink.HandleEvent(context.Background(), click)

	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("onclick", "success")); got != 1 {
		t.Errorf("success = %v", got)
	}
	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("onclick", "error")); got != 1 {
		t.Errorf("error = %v", got)
	}
	if got := metricCounterValue(t, m.eventErrors.WithLabelValues("onclick", "E061")); got != 1 {
		t.Errorf("errors by code = %v", got)
	}
	if got := metricHistogramCount(t, m.eventDuration.WithLabelValues("onclick")); got != 2 {
		t.Errorf("duration samples = %d", got)
	}

	m.RecordPatches(3)
	m.RecordPatches(0)
	if got := metricCounterValue(t, m.patchesTotal); got != 3 {
		t.Errorf("patches = %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"app_events_total", "app_event_errors_total", "app_event_duration_seconds", "app_patches_total"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordPatches(1)
	sink := Chain(cell.SinkFunc(func(ctx context.Context, ev cell.Event) error { return nil }), m.Middleware())
	if err := sink.HandleEvent(context.Background(), click); err != nil {
		t.Error(err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{cellerr.New("E020"), "E020"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{cell.ErrUnboundEvent, "unbound"},
		{errors.New("disk full"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
