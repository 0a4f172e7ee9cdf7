// Package middleware wraps cell event sinks with tracing, metrics and
// panic recovery.
//
// A Middleware takes a cell.Sink and returns a Sink. Chain applies a list
// of them so that the first one listed runs outermost:
//
//	sink := middleware.Chain(cell.LogSink(logger),
//	    middleware.Recover(logger),
//	    middleware.OpenTelemetry(middleware.WithTracerName("cells")),
//	    m.Middleware(),
//	)
//	d := cell.NewDispatcher(sink)
//
// # OpenTelemetry
//
// OpenTelemetry starts one span per fired event, named after the event
// ("cells.onclick"), with the cell ID and event name as attributes. The
// tracer comes from the global provider.
//
// # Prometheus Metrics
//
// NewMetrics registers these collectors, prefixed by the namespace:
//   - events_total: events by name and status
//   - event_duration_seconds: sink latency histogram
//   - event_errors_total: failed events by name and error type
//   - patches_total: patches between successive renders of a document
//
// Register them on the registry served by promhttp:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
