package middleware

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/cell"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "cells").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the event collectors. A nil *Metrics records nothing.
type Metrics struct {
	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventErrors   *prometheus.CounterVec
	patchesTotal  prometheus.Counter
}

// NewMetrics creates and registers the event collectors. Registering
// twice with the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "cells",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of cell events handled",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_errors_total",
			Help:        "Total number of failed cell events",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "error_type"}),

		patchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total patches between successive renders",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns a Middleware recording into m.
func (m *Metrics) Middleware() Middleware {
	return func(next cell.Sink) cell.Sink {
		if m == nil {
			return next
		}
		return cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
			start := time.Now()
			err := next.HandleEvent(ctx, ev)
			m.eventDuration.WithLabelValues(ev.Name).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.eventErrors.WithLabelValues(ev.Name, categorizeError(err)).Inc()
			}
			m.eventsTotal.WithLabelValues(ev.Name, status).Inc()
			return err
		})
	}
}

// RecordPatches adds n to the patch counter.
func (m *Metrics) RecordPatches(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.patchesTotal.Add(float64(n))
}

// categorizeError keeps the error_type label low-cardinality.
func categorizeError(err error) string {
	if code := cellerr.Code(err); code != "" {
		return code
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, cell.ErrUnboundEvent):
		return "unbound"
	case strings.Contains(err.Error(), "panicked"):
		return "panic"
	default:
		return "internal"
	}
}
