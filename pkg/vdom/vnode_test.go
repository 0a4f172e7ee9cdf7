package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindRaw, "Raw"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want bool
	}{
		{"nil node", nil, false},
		{"text node", &VNode{Kind: KindText, Text: "hello"}, false},
		{"element without handlers", &VNode{Kind: KindElement, Tag: "div", Props: Props{"class": "x"}}, false},
		{"element with onclick", &VNode{Kind: KindElement, Tag: "button", Props: Props{"onclick": func() {}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsInteractive(); got != tt.want {
				t.Errorf("IsInteractive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeIsEmpty(t *testing.T) {
	var nilNode *VNode
	if !nilNode.IsEmpty() {
		t.Error("nil node should be empty")
	}
	if !Empty().IsEmpty() {
		t.Error("Empty() should be empty")
	}
	if Fragment(Text("x")).IsEmpty() {
		t.Error("fragment with a child should not be empty")
	}
	if Div().IsEmpty() {
		t.Error("element should not be empty")
	}
}

func TestPropsAccessors(t *testing.T) {
	var nilProps Props
	if nilProps.Get("id") != nil {
		t.Error("Get on nil Props should return nil")
	}
	if nilProps.String("id") != "" {
		t.Error("String on nil Props should return empty string")
	}

	handler := func() {}
	p := Props{"id": "a", "tabindex": 3, "onclick": handler}
	if p.String("id") != "a" {
		t.Errorf("String(id) = %q, want a", p.String("id"))
	}
	if p.String("tabindex") != "" {
		t.Error("String on non-string value should return empty string")
	}
	handlers := p.Handlers()
	if len(handlers) != 1 {
		t.Fatalf("Handlers() len = %d, want 1", len(handlers))
	}
	if _, ok := handlers["onclick"]; !ok {
		t.Error("Handlers() missing onclick")
	}
}

func TestVNodeWalk(t *testing.T) {
	tree := Div(ID("root"),
		Span(Text("a")),
		Div(ID("skip"), Span(Text("hidden"))),
	)

	var seen []string
	tree.Walk(func(n *VNode) bool {
		if n.Kind == KindElement {
			seen = append(seen, n.Tag)
		}
		return n.Props.String("id") != "skip"
	})

	want := []string{"div", "span", "div"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestAttrIsEmpty(t *testing.T) {
	if !(Attr{}).IsEmpty() {
		t.Error("zero Attr should be empty")
	}
	if ID("x").IsEmpty() {
		t.Error("ID attr should not be empty")
	}
}
