package render

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/vango-dev/cells/pkg/vdom"
)

// Component adapts a VNode tree to a templ.Component.
func Component(node *vdom.VNode, config RendererConfig) templ.Component {
	r := NewRenderer(config)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.RenderToWriter(w, node)
	})
}

// Page adapts a full document to a templ.Component.
func Page(page PageData, config RendererConfig) templ.Component {
	r := NewRenderer(config)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.RenderPage(w, page)
	})
}
