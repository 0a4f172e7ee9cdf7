package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0),
	}

	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

// Empty returns a fragment with no children. It stands in for an absent
// subtree where a node is still required.
func Empty() *VNode {
	return Fragment()
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// Either returns first if it's not nil, otherwise second.
func Either(first, second *VNode) *VNode {
	if first != nil {
		return first
	}
	return second
}

// Key creates a key attribute for reconciliation.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Clone returns a deep copy of the node tree. Prop values are copied
// shallowly, so handler identity survives the copy.
func Clone(v *VNode) *VNode {
	if v == nil {
		return nil
	}
	out := *v
	if v.Props != nil {
		out.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			out.Props[k] = val
		}
	}
	if v.Children != nil {
		out.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			out.Children[i] = Clone(child)
		}
	}
	return &out
}
