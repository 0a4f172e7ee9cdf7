package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// A creates an arbitrary attribute.
func A(key string, value any) Attr { return attr(key, value) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Data creates a data-* attribute.
// Example: Data("cell-id", "c1") → data-cell-id="c1"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return attr("disabled", true) }

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Attrs converts a string map into attributes.
func Attrs(m map[string]string) []Attr {
	out := make([]Attr, 0, len(m))
	for k, v := range m {
		out = append(out, attr(k, v))
	}
	return out
}
