package cell

import (
	"sort"

	"github.com/vango-dev/cells/pkg/vdom"
)

// Slots resolves a cell's content. Cells never see their description's
// children or replacements directly.
type Slots interface {
	// UsesReplacements reports whether content comes from replacements.
	UsesReplacements() bool

	// RenderChildNamed renders the named child through the scheduler.
	RenderChildNamed(name string) *vdom.VNode

	// ReplacementFor returns the precomputed subtree for a slot.
	ReplacementFor(name string) *vdom.VNode
}

// Base is the Slots implementation the tree hands to every cell.
type Base struct {
	desc             *Description
	usesReplacements bool
	renderChild      func(*Description) *vdom.VNode
}

// NewBase builds the slot resolver for desc. renderChild renders a named
// child; it is typically the tree scheduler. The replacement mode is
// decided here and never changes.
func NewBase(desc *Description, renderChild func(*Description) *vdom.VNode) *Base {
	return &Base{
		desc:             desc,
		usesReplacements: len(desc.Replacements) > 0,
		renderChild:      renderChild,
	}
}

// UsesReplacements implements Slots.
func (b *Base) UsesReplacements() bool {
	return b.usesReplacements
}

// RenderChildNamed implements Slots. A missing child renders as an empty
// fragment.
func (b *Base) RenderChildNamed(name string) *vdom.VNode {
	child := b.desc.NamedChildren[name]
	if child == nil || b.renderChild == nil {
		return vdom.Empty()
	}
	if node := b.renderChild(child); node != nil {
		return node
	}
	return vdom.Empty()
}

// ReplacementFor implements Slots. The subtree is cloned so the caller may
// annotate it without touching the description. A missing slot yields an
// empty fragment.
func (b *Base) ReplacementFor(name string) *vdom.VNode {
	r := b.desc.Replacements[name]
	if r == nil {
		return vdom.Empty()
	}
	return vdom.Clone(r)
}

// ChildNames returns the description's named-child slots in sorted order.
func (b *Base) ChildNames() []string {
	return sortedKeys(b.desc.NamedChildren)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
