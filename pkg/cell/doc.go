// Package cell implements the component rendering contract for
// server-driven cell trees.
//
// The server describes a tree of cells. Each cell has an ID, a type, an
// extraData record (event callbacks and CSS classes), and content supplied
// in one of two ways:
//
//   - named children: slot name to child cell description, rendered
//     recursively through the tree scheduler
//   - replacements: slot name to a precomputed subtree, used verbatim
//
// A description either uses replacements or it does not; the choice is
// fixed when the cell's Base is constructed and exactly one resolution
// path runs per render.
//
// # Cells
//
// A Cell is a pure function of its Props and Slots:
//
//	type Cell interface {
//	    Render(p Props, s Slots) *vdom.VNode
//	}
//
// Button is the reference leaf. It renders a single <button> element
// carrying the cell's ID, its type marker, its trimmed class list, and its
// onclick callback when one is bound.
//
// # Tree
//
// Tree walks a description, looks up each cell type in a Registry, and
// renders it. A cell that panics, has an unknown type, or nests too deep is
// replaced by a placeholder node; its siblings and ancestors still render.
// Every failure is returned, joined, alongside the rendered tree.
//
// # Events
//
// Callbacks are opaque handles minted by a Dispatcher. Binding the same
// (cell ID, event name) pair twice yields the same *Callback, so a
// re-decoded document keeps handler identity stable across renders.
package cell
