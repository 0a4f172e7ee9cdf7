package vdom

import "reflect"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string, EventHandler.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.setAttr(v)

		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			// Shorthand for text node
			node.Children = append(node.Children, Text(v))

		case EventHandler:
			// An absent handler leaves no key behind
			if v.Event != "" && !isNilHandler(v.Handler) {
				node.Props[v.Event] = v.Handler
			}
		}
	}

	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
	}
	v.Props[a.Key] = a.Value
}

// isNilHandler reports whether h is nil or a typed nil pointer/func.
func isNilHandler(h any) bool {
	if h == nil {
		return true
	}
	rv := reflect.ValueOf(h)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Interface, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func Div(args ...any) *VNode    { return createElement("div", args) }
func Span(args ...any) *VNode   { return createElement("span", args) }
func P(args ...any) *VNode      { return createElement("p", args) }
func Pre(args ...any) *VNode    { return createElement("pre", args) }
func Code(args ...any) *VNode   { return createElement("code", args) }
func Strong(args ...any) *VNode { return createElement("strong", args) }
func Button(args ...any) *VNode { return createElement("button", args) }

// Element creates an element with an arbitrary tag name.
// Used when the tag comes from data, e.g. a server-sent replacement subtree.
func Element(tag string, args ...any) *VNode {
	return createElement(tag, args)
}
