package wire

import (
	"fmt"
	"strconv"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/vdom"
)

// kind resolves the node kind, applying the default: element when a tag
// is set, text otherwise.
func (n *Node) kind() string {
	if n.Kind != "" {
		return n.Kind
	}
	if n.Tag != "" {
		return KindElement
	}
	return KindText
}

// ToVNode converts the node to a vdom tree. path names the node in error
// messages. Attributes naming event handlers are dropped; documents cannot
// bind handlers through markup.
func (n *Node) ToVNode(path string) (*vdom.VNode, error) {
	if n == nil {
		return nil, nil
	}

	switch n.kind() {
	case KindText:
		return vdom.Text(n.Text), nil
	case KindRaw:
		return vdom.Raw(n.Text), nil
	case KindElement, KindFragment:
	default:
		return nil, cellerr.New("E023").WithDetail(fmt.Sprintf("%s: unknown kind %q", path, n.Kind))
	}

	children := make([]*vdom.VNode, 0, len(n.Children))
	for i, child := range n.Children {
		v, err := child.ToVNode(fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if v != nil {
			children = append(children, v)
		}
	}

	if n.kind() == KindFragment {
		return vdom.Fragment(children), nil
	}
	if n.Tag == "" {
		return nil, cellerr.New("E023").WithDetail(path + ": element without tag")
	}

	attrs := make([]vdom.Attr, 0, len(n.Attrs))
	for k, v := range n.Attrs {
		if vdom.IsEventKey(k) {
			continue
		}
		attrs = append(attrs, vdom.A(k, v))
	}
	return vdom.Element(n.Tag, attrs, children), nil
}

// FromVNode converts a vdom tree to its serializable form. Handlers and
// HIDs are dropped.
func FromVNode(v *vdom.VNode) *Node {
	if v == nil {
		return nil
	}

	switch v.Kind {
	case vdom.KindText:
		return &Node{Kind: KindText, Text: v.Text}
	case vdom.KindRaw:
		return &Node{Kind: KindRaw, Text: v.Text}
	}

	n := &Node{Kind: KindElement, Tag: v.Tag}
	if v.Kind == vdom.KindFragment {
		n = &Node{Kind: KindFragment}
	}

	for key, value := range v.Props {
		if vdom.IsEventKey(key) {
			continue
		}
		s, ok := attrString(value)
		if !ok {
			continue
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]string)
		}
		n.Attrs[key] = s
	}
	for _, child := range v.Children {
		if c := FromVNode(child); c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// attrString stringifies a prop value. A false boolean means the
// attribute is absent.
func attrString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if !v {
			return "", false
		}
		return "true", true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
