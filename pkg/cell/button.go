package cell

import (
	"strings"

	"github.com/vango-dev/cells/pkg/vdom"
)

// ButtonType is the cell-type marker for Button.
const ButtonType = "Button"

// Button renders a clickable button whose content comes from the
// "contents" replacement or the "content" named child.
type Button struct{}

// Render implements Cell.
func (Button) Render(p Props, s Slots) *vdom.VNode {
	return vdom.Button(
		vdom.ID(p.ID),
		vdom.Data("cell-id", p.ID),
		vdom.Data("cell-type", ButtonType),
		vdom.Class(HTMLClasses(p)),
		vdom.OnClick(EventFor(p, "onclick")),
		buttonContent(s),
	)
}

// buttonContent resolves the button's single child. Only one of the two
// slot paths is consulted.
func buttonContent(s Slots) *vdom.VNode {
	if s.UsesReplacements() {
		return s.ReplacementFor("contents")
	}
	return s.RenderChildNamed("content")
}

// EventFor returns the callback bound to name, or nil.
func EventFor(p Props, name string) *Callback {
	return p.ExtraData.Events[name]
}

// HTMLClasses joins the cell's classes with spaces and trims the result.
func HTMLClasses(p Props) string {
	return strings.TrimSpace(strings.Join(p.ExtraData.Classes, " "))
}
