package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/cells/pkg/cell"
)

const defaultTracerName = "cells"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "cells").
	TracerName string

	// IncludePayload adds the bound payload keys as attributes.
	// Payloads may carry user data, so this is off by default.
	IncludePayload bool

	// Filter reports whether an event should be traced.
	// If nil, all events are traced.
	Filter func(ev cell.Event) bool

	// AttributeExtractor adds custom attributes per event.
	AttributeExtractor func(ev cell.Event) []attribute.KeyValue

	// Tracer overrides the tracer resolved from TracerName.
	Tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer uses tracer instead of the global provider.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = tracer
	}
}

// WithIncludePayload enables payload attributes.
func WithIncludePayload(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludePayload = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev cell.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev cell.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry traces every event that reaches the sink.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next cell.Sink) cell.Sink {
		return cell.SinkFunc(func(ctx context.Context, ev cell.Event) error {
			if config.Filter != nil && !config.Filter(ev) {
				return next.HandleEvent(ctx, ev)
			}

			attrs := []attribute.KeyValue{
				attribute.String("cells.cell_id", ev.CellID),
				attribute.String("cells.event", ev.Name),
			}
			if config.IncludePayload {
				keys := make([]string, 0, len(ev.Payload))
				for k := range ev.Payload {
					keys = append(keys, k)
				}
				attrs = append(attrs, attribute.StringSlice("cells.payload_keys", keys))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ev)...)
			}

			ctx, span := tracer.Start(ctx, "cells."+ev.Name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			err := next.HandleEvent(ctx, ev)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		})
	}
}
