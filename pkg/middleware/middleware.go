package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-dev/cells/pkg/cell"
)

// Middleware wraps a Sink.
type Middleware func(next cell.Sink) cell.Sink

// Chain wraps sink with mws. The first middleware is the outermost.
func Chain(sink cell.Sink, mws ...Middleware) cell.Sink {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			sink = mws[i](sink)
		}
	}
	return sink
}

// Recover turns a panicking sink into an error.
func Recover(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next cell.Sink) cell.Sink {
		return cell.SinkFunc(func(ctx context.Context, ev cell.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "event handler panicked",
						"cell_id", ev.CellID,
						"event", ev.Name,
						"panic", r,
					)
					err = fmt.Errorf("event %s/%s panicked: %v", ev.CellID, ev.Name, r)
				}
			}()
			return next.HandleEvent(ctx, ev)
		})
	}
}
