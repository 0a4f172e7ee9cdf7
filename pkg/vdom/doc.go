// Package vdom provides the virtual node model that cells render into.
//
// A cell never touches the DOM. It returns a *VNode describing one element
// (or text, fragment, raw HTML) and the rendering layer turns that tree into
// HTML or patches.
//
// # Core Types
//
// VNode is the building block. Props holds attributes and event handlers;
// Attr and EventHandler are the values passed to element factories:
//
//	Button(ID("save"), Class("btn primary"), OnClick(cb),
//	    Span(Text("Save")),
//	)
//
// nil arguments are ignored, which keeps optional attributes and absent
// handlers out of Props entirely.
//
// # Diffing
//
// Diff compares two trees and returns the Patch list that turns one into the
// other. Two renders of the same cell description produce an empty diff.
package vdom
