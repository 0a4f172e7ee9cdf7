package vdom

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Diff compares two VNode trees and returns the patches needed to transform
// prev into next. Event handlers are not compared; they are rebound by the
// host on every render.
func Diff(prev, next *VNode) []Patch {
	d := &differ{}
	d.node(prev, next, "")
	return d.patches
}

// Equal reports whether two trees are structurally identical.
// Like Diff, it copies HIDs from a onto the matching nodes of b.
func Equal(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return len(Diff(a, b)) == 0
}

type differ struct {
	patches []Patch
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

// node compares two nodes. parentHID is the nearest enclosing element ID,
// used for text and raw nodes that have none of their own.
func (d *differ) node(prev, next *VNode, parentHID string) {
	switch {
	case prev == nil && next == nil:
		return
	case prev == nil:
		// Insertions are emitted by the parent
		return
	case next == nil:
		d.emit(Patch{Op: PatchRemoveNode, HID: prev.HID})
		return
	case prev.Kind != next.Kind:
		d.emit(Patch{Op: PatchReplaceNode, HID: prev.HID, Node: next})
		return
	}

	next.HID = prev.HID

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			d.emit(Patch{Op: PatchSetText, HID: firstNonEmpty(prev.HID, parentHID), Value: next.Text})
		}
	case KindRaw:
		if prev.Text != next.Text {
			d.emit(Patch{Op: PatchReplaceNode, HID: firstNonEmpty(prev.HID, parentHID), Node: next})
		}
	case KindElement:
		if prev.Tag != next.Tag {
			d.emit(Patch{Op: PatchReplaceNode, HID: prev.HID, Node: next})
			return
		}
		d.props(prev, next)
		d.children(prev, next, prev.HID)
	case KindFragment:
		d.children(prev, next, parentHID)
	}
}

func (d *differ) props(prev, next *VNode) {
	for key, prevVal := range prev.Props {
		if isEventHandler(key) || key == "key" {
			continue
		}
		nextVal, ok := next.Props[key]
		if !ok {
			d.emit(Patch{Op: PatchRemoveAttr, HID: prev.HID, Key: key})
		} else if !propsEqual(prevVal, nextVal) {
			d.emit(Patch{Op: PatchSetAttr, HID: prev.HID, Key: key, Value: propToString(nextVal)})
		}
	}
	for key, nextVal := range next.Props {
		if isEventHandler(key) || key == "key" {
			continue
		}
		if _, ok := prev.Props[key]; !ok {
			d.emit(Patch{Op: PatchSetAttr, HID: prev.HID, Key: key, Value: propToString(nextVal)})
		}
	}
}

func (d *differ) children(prev, next *VNode, parentHID string) {
	if hasKeys(prev.Children) || hasKeys(next.Children) {
		d.keyedChildren(prev, next, parentHID)
		return
	}

	n := max(len(prev.Children), len(next.Children))
	for i := 0; i < n; i++ {
		var p, c *VNode
		if i < len(prev.Children) {
			p = prev.Children[i]
		}
		if i < len(next.Children) {
			c = next.Children[i]
		}
		if p == nil && c != nil {
			d.emit(Patch{Op: PatchInsertNode, ParentID: prev.HID, Index: i, Node: c})
			continue
		}
		d.node(p, c, parentHID)
	}
}

func (d *differ) keyedChildren(prev, next *VNode, parentHID string) {
	prevIndex := make(map[string]int, len(prev.Children))
	for i, child := range prev.Children {
		if key := getKey(child); key != "" {
			prevIndex[key] = i
		}
	}

	matched := make(map[int]bool)
	for i, child := range next.Children {
		key := getKey(child)
		j, ok := prevIndex[key]
		if key == "" || !ok {
			d.emit(Patch{Op: PatchInsertNode, ParentID: prev.HID, Index: i, Node: child})
			continue
		}
		matched[j] = true
		old := prev.Children[j]
		if j != i {
			d.emit(Patch{Op: PatchMoveNode, HID: old.HID, ParentID: prev.HID, Index: i})
		}
		d.node(old, child, parentHID)
	}

	for i, child := range prev.Children {
		if !matched[i] {
			d.emit(Patch{Op: PatchRemoveNode, HID: child.HID})
		}
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// getKey extracts the reconciliation key from a node.
func getKey(node *VNode) string {
	if node == nil {
		return ""
	}
	if node.Key != "" {
		return node.Key
	}
	return node.Props.String("key")
}

// hasKeys returns true if any child has a key.
func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if getKey(child) != "" {
			return true
		}
	}
	return false
}

// isEventHandler returns true if the key is an event handler (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func isEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// IsEventKey reports whether a prop key names an event handler.
func IsEventKey(key string) bool {
	return isEventHandler(key)
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to a string for the patch.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
