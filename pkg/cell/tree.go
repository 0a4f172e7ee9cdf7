package cell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/vdom"
)

// DefaultMaxDepth bounds named-child nesting when no limit is configured.
const DefaultMaxDepth = 64

const defaultTracerName = "cells"

// Tree renders description trees. A Tree is safe for concurrent use as
// long as its registry is not modified during a render.
type Tree struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *Metrics
	maxDepth int
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithRegistry sets the cell registry. Default: NewRegistry().
func WithRegistry(r *Registry) TreeOption {
	return func(t *Tree) {
		t.registry = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) TreeOption {
	return func(t *Tree) {
		t.logger = l
	}
}

// WithTracer sets the tracer. Default: the global provider's "cells" tracer.
func WithTracer(tr trace.Tracer) TreeOption {
	return func(t *Tree) {
		t.tracer = tr
	}
}

// WithMetrics enables render metrics.
func WithMetrics(m *Metrics) TreeOption {
	return func(t *Tree) {
		t.metrics = m
	}
}

// WithMaxDepth bounds named-child nesting. Values below 1 select
// DefaultMaxDepth.
func WithMaxDepth(n int) TreeOption {
	return func(t *Tree) {
		t.maxDepth = n
	}
}

// NewTree creates a render scheduler.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{}
	for _, opt := range opts {
		opt(t)
	}
	if t.registry == nil {
		t.registry = NewRegistry()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(defaultTracerName)
	}
	if t.maxDepth < 1 {
		t.maxDepth = DefaultMaxDepth
	}
	return t
}

// Registry returns the tree's cell registry.
func (t *Tree) Registry() *Registry {
	return t.registry
}

// Render renders root and everything below it. Failing cells are replaced
// by placeholders; their errors are joined into the returned error while
// the rest of the tree still renders. A nil root renders as an empty
// fragment.
func (t *Tree) Render(ctx context.Context, root *Description) (*vdom.VNode, error) {
	if root == nil {
		return vdom.Empty(), nil
	}

	passID := uuid.New().String()
	ctx, span := t.tracer.Start(ctx, "cells.render", trace.WithAttributes(
		attribute.String("cells.pass_id", passID),
		attribute.String("cells.root_id", root.ID),
		attribute.String("cells.root_type", root.Type),
	))
	defer span.End()

	logger := t.logger.With("pass_id", passID)
	start := time.Now()

	p := &pass{tree: t, ctx: ctx, logger: logger}
	node := p.render(root, 0)
	p.record()

	elapsed := time.Since(start)
	t.metrics.treeRendered(elapsed.Seconds())

	span.SetAttributes(
		attribute.Int("cells.rendered", p.rendered),
		attribute.Int("cells.failed", len(p.errs)),
	)

	err := errors.Join(p.errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("%d cells failed", len(p.errs)))
		logger.WarnContext(ctx, "tree rendered with failures",
			"root_id", root.ID,
			"failed", len(p.errs),
			"duration", elapsed,
		)
	} else {
		span.SetStatus(codes.Ok, "")
		logger.DebugContext(ctx, "tree rendered",
			"root_id", root.ID,
			"cells", p.rendered,
			"duration", elapsed,
		)
	}
	return node, err
}

// pass holds the state of one Render call.
type pass struct {
	tree     *Tree
	ctx      context.Context
	logger   *slog.Logger
	rendered int
	errs     []error
	// outcomes are recorded to metrics once the pass ends, so a subtree
	// discarded by a panicking parent is not counted.
	outcomes []outcome
}

type outcome struct {
	cellType string
	code     string // empty when the cell rendered
}

func (p *pass) record() {
	for _, o := range p.outcomes {
		if o.code == "" {
			p.tree.metrics.cellRendered(o.cellType)
		} else {
			p.tree.metrics.cellFailed(o.cellType, o.code)
		}
	}
}

// render renders one cell, isolating any failure to that cell.
func (p *pass) render(desc *Description, depth int) (node *vdom.VNode) {
	if depth >= p.tree.maxDepth {
		return p.fail(desc, cellerr.New("E003").
			WithDetail(fmt.Sprintf("Nesting exceeded %d levels.", p.tree.maxDepth)))
	}

	c, ok := p.tree.registry.Lookup(desc.Type)
	if !ok {
		return p.fail(desc, cellerr.New("E001").
			WithSuggestion(fmt.Sprintf("Registered types: %v", p.tree.registry.Types())))
	}
	if c == nil {
		return p.fail(desc, cellerr.New("E004"))
	}

	// A panic replaces the whole subtree, so whatever the children
	// reported is dropped with it.
	rendered, errs, outcomes := p.rendered, len(p.errs), len(p.outcomes)
	defer func() {
		if r := recover(); r != nil {
			p.rendered, p.errs, p.outcomes = rendered, p.errs[:errs], p.outcomes[:outcomes]
			node = p.fail(desc, cellerr.New("E002").Wrap(fmt.Errorf("%v", r)))
		}
	}()

	base := NewBase(desc, func(child *Description) *vdom.VNode {
		return p.render(child, depth+1)
	})
	node = c.Render(desc.Props(), base)
	if node == nil {
		node = vdom.Empty()
	}

	p.rendered++
	p.outcomes = append(p.outcomes, outcome{cellType: desc.Type})
	return node
}

func (p *pass) fail(desc *Description, err *cellerr.Error) *vdom.VNode {
	err.WithCell(desc.ID, desc.Type)
	p.errs = append(p.errs, err)
	p.outcomes = append(p.outcomes, outcome{cellType: desc.Type, code: err.Code})
	p.logger.ErrorContext(p.ctx, "cell render failed",
		"cell_id", desc.ID,
		"cell_type", desc.Type,
		"code", err.Code,
		"error", err,
	)
	return Placeholder(desc.ID, err)
}
