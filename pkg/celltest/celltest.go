package celltest

import (
	"strings"
	"testing"

	"github.com/vango-dev/cells/pkg/cell"
	"github.com/vango-dev/cells/pkg/render"
	"github.com/vango-dev/cells/pkg/vdom"
)

// PropsBuilder allows fluent construction of cell props.
type PropsBuilder struct {
	props cell.Props
}

// NewProps starts props for the cell id with an empty extraData record.
func NewProps(id string) *PropsBuilder {
	return &PropsBuilder{props: cell.Props{
		ID: id,
		ExtraData: &cell.ExtraData{
			Events: make(map[string]*cell.Callback),
		},
	}}
}

// WithClasses appends CSS classes.
func (b *PropsBuilder) WithClasses(classes ...string) *PropsBuilder {
	b.props.ExtraData.Classes = append(b.props.ExtraData.Classes, classes...)
	return b
}

// WithEvent binds a callback to an event name.
func (b *PropsBuilder) WithEvent(name string, cb *cell.Callback) *PropsBuilder {
	b.props.ExtraData.Events[name] = cb
	return b
}

// Build returns the props.
func (b *PropsBuilder) Build() cell.Props {
	return b.props
}

// Slots is a recording cell.Slots fake.
type Slots struct {
	Replacements bool
	Children     map[string]*vdom.VNode
	Replaced     map[string]*vdom.VNode

	// ChildCalls and ReplacementCalls record the slot names requested.
	ChildCalls       []string
	ReplacementCalls []string
}

// ChildSlots returns a fake that resolves named children.
func ChildSlots(children map[string]*vdom.VNode) *Slots {
	return &Slots{Children: children}
}

// ReplacementSlots returns a fake in replacement mode.
func ReplacementSlots(replaced map[string]*vdom.VNode) *Slots {
	return &Slots{Replacements: true, Replaced: replaced}
}

// UsesReplacements implements cell.Slots.
func (s *Slots) UsesReplacements() bool { return s.Replacements }

// RenderChildNamed implements cell.Slots.
func (s *Slots) RenderChildNamed(name string) *vdom.VNode {
	s.ChildCalls = append(s.ChildCalls, name)
	if n := s.Children[name]; n != nil {
		return n
	}
	return vdom.Empty()
}

// ReplacementFor implements cell.Slots.
func (s *Slots) ReplacementFor(name string) *vdom.VNode {
	s.ReplacementCalls = append(s.ReplacementCalls, name)
	if n := s.Replaced[name]; n != nil {
		return n
	}
	return vdom.Empty()
}

// RenderToString renders a VNode and returns the HTML string, or "" if
// rendering fails.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectProp asserts that the root node carries prop key with exactly
// value. Pointer values are compared by identity.
func ExpectProp(t *testing.T, node *vdom.VNode, key string, value any) {
	t.Helper()
	if node == nil {
		t.Fatalf("expected prop %s on nil node", key)
	}
	got, ok := node.Props[key]
	if !ok {
		t.Errorf("expected prop %s, node has %v", key, propKeys(node))
		return
	}
	if got != value {
		t.Errorf("prop %s = %v, want %v", key, got, value)
	}
}

// ExpectNoProp asserts that the root node has no prop key at all.
func ExpectNoProp(t *testing.T, node *vdom.VNode, key string) {
	t.Helper()
	if node == nil {
		return
	}
	if v, ok := node.Props[key]; ok {
		t.Errorf("expected no prop %s, got %v", key, v)
	}
}

// OnlyChild returns the root's single child, failing the test if the root
// does not have exactly one.
func OnlyChild(t *testing.T, node *vdom.VNode) *vdom.VNode {
	t.Helper()
	n := 0
	if node != nil {
		n = len(node.Children)
	}
	if n != 1 {
		t.Fatalf("expected exactly one child, got %d", n)
	}
	return node.Children[0]
}

func propKeys(node *vdom.VNode) []string {
	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	return keys
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
