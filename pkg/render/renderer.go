package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/cells/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes VNode trees to HTML. A Renderer holds no per-render
// state and may be shared between goroutines.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	if !r.config.Pretty {
		return r.renderNode(w, node, 0, false)
	}
	nodes := flatten([]*vdom.VNode{node})
	if !allElements(nodes) {
		return r.renderNode(w, node, 0, false)
	}
	return r.renderLines(w, nodes, 0)
}

// renderNode dispatches rendering based on node kind. pretty is only true
// when the node sits on a line of its own.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, depth int, pretty bool) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth, pretty)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth, pretty); err != nil {
				return err
			}
		}
		return nil
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("unknown node kind: %d", node.Kind)
	}
}

// renderLines writes each element on its own indented line.
func (r *Renderer) renderLines(w io.Writer, nodes []*vdom.VNode, depth int) error {
	for _, n := range nodes {
		r.writeIndent(w, depth)
		if err := r.renderElement(w, n, depth, true); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// renderElement renders an HTML element with its attributes and children.
// In pretty mode children are broken onto lines only when all of them are
// elements and the tag is a block; text keeps its exact whitespace.
func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, depth int, pretty bool) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("element without tag")
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if node.HID != "" {
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, escapeAttr(node.HID)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vdom.IsVoidElement(tag) {
		return nil
	}

	children := flatten(node.Children)
	if pretty && len(children) > 0 && isBlockElement(tag) && allElements(children) {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := r.renderLines(w, children, depth+1); err != nil {
			return err
		}
		r.writeIndent(w, depth)
	} else {
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth+1, false); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", tag)
	return err
}

// flatten splices fragment children into their parent's list.
func flatten(nodes []*vdom.VNode) []*vdom.VNode {
	out := make([]*vdom.VNode, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n == nil:
		case n.Kind == vdom.KindFragment:
			out = append(out, flatten(n.Children)...)
		default:
			out = append(out, n)
		}
	}
	return out
}

func allElements(nodes []*vdom.VNode) bool {
	for _, n := range nodes {
		if n.Kind != vdom.KindElement {
			return false
		}
	}
	return true
}

// renderAttributes writes props in sorted order, replacing handlers with
// event marker attributes.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var events []string
	for _, key := range keys {
		value := node.Props[key]

		// Handlers are bound by the host, never serialized
		if vdom.IsEventKey(key) {
			if value != nil {
				events = append(events, strings.ToLower(key[2:]))
			}
			continue
		}

		switch {
		case key == "key", strings.HasPrefix(key, "_"):
			continue
		case key == "className":
			key = "class"
		case key == "htmlFor":
			key = "for"
		}

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
		}

		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(attrToString(value))); err != nil {
			return err
		}
	}

	for _, event := range events {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, event); err != nil {
			return err
		}
	}
	return nil
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat(r.config.Indent, depth))
}
