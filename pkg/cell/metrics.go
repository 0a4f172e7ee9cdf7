package cell

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the render metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "cells").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for tree render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registerer receives the collectors.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

// MetricsOption configures the render metrics.
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

// WithRegisterer sets the Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registerer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:  "cells",
		Buckets:    prometheus.DefBuckets,
		Registerer: prometheus.DefaultRegisterer,
	}
}

// Metrics records render outcomes. A nil *Metrics records nothing.
type Metrics struct {
	rendered *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates and registers the render collectors. Registering twice
// against the same registerer panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registerer)

	return &Metrics{
		rendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rendered_total",
			Help:        "Total number of cells rendered, by type and status",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_failures_total",
			Help:        "Total number of isolated cell render failures, by type and error code",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "code"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tree_render_duration_seconds",
			Help:        "Time spent rendering a whole cell tree",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) cellRendered(cellType string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(cellType, "ok").Inc()
}

func (m *Metrics) cellFailed(cellType, code string) {
	if m == nil {
		return
	}
	m.rendered.WithLabelValues(cellType, "error").Inc()
	m.failures.WithLabelValues(cellType, code).Inc()
}

func (m *Metrics) treeRendered(seconds float64) {
	if m == nil {
		return
	}
	m.duration.Observe(seconds)
}
