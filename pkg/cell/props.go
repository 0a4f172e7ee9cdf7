package cell

import "github.com/vango-dev/cells/pkg/vdom"

// Props is the read-only record handed to a cell for one render.
type Props struct {
	// ID is the stable cell identifier. It becomes the DOM id and the
	// routing key for events.
	ID string

	// ExtraData carries event callbacks and CSS classes. Leaves assume it
	// is present.
	ExtraData *ExtraData
}

// ExtraData is the auxiliary record sent with every cell.
type ExtraData struct {
	// Events maps an event name (e.g. "onclick") to its callback.
	Events map[string]*Callback

	// Classes are CSS class names in document order.
	Classes []string
}

// Description is the server-sent record for one cell instance.
type Description struct {
	ID        string
	Type      string
	ExtraData *ExtraData

	// NamedChildren maps slot names to child descriptions.
	NamedChildren map[string]*Description

	// Replacements maps slot names to precomputed subtrees. A description
	// with at least one replacement resolves all slots from here.
	Replacements map[string]*vdom.VNode
}

// Props returns the props a cell built from d receives.
func (d *Description) Props() Props {
	return Props{ID: d.ID, ExtraData: d.ExtraData}
}

// Walk calls fn for d and every named-child description below it, in
// sorted slot order. Returning false from fn skips the description's
// children.
func (d *Description) Walk(fn func(*Description) bool) {
	if d == nil || !fn(d) {
		return
	}
	for _, name := range sortedKeys(d.NamedChildren) {
		d.NamedChildren[name].Walk(fn)
	}
}
