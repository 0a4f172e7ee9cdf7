package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "button")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText and KindRaw
	HID      string   // Patch target ID, assigned by the host
}

// Props holds attributes and event handlers.
type Props map[string]any

// Get returns the prop value for key, or nil.
func (p Props) Get(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// String returns the prop as a string, or "" if absent or not a string.
func (p Props) String(key string) string {
	s, _ := p.Get(key).(string)
	return s
}

// Handlers returns the event props (keys starting with "on").
func (p Props) Handlers() map[string]any {
	var out map[string]any
	for key, value := range p {
		if !isEventHandler(key) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the node renders nothing: nil, or a fragment
// with no children.
func (v *VNode) IsEmpty() bool {
	return v == nil || (v.Kind == KindFragment && len(v.Children) == 0)
}

// Walk calls fn for v and every descendant in document order.
// Returning false from fn skips the node's children.
func (v *VNode) Walk(fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	for _, child := range v.Children {
		child.Walk(fn)
	}
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Opaque handle invoked by the host
}
