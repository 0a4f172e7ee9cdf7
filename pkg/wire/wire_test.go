package wire

import (
	"errors"
	"strings"
	"testing"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/cell"
	"github.com/vango-dev/cells/pkg/vdom"
)

const sampleJSON = `{
  "title": "Demo",
  "root": {
    "id": "b1",
    "type": "Button",
    "extraData": {
      "events": {"onclick": {"action": "save", "n": 2}},
      "classes": ["btn", "primary"]
    },
    "namedChildren": {
      "content": {"id": "t1", "type": "Text", "extraData": {"classes": ["label"]}}
    },
    "replacements": {
      "contents": {"tag": "span", "attrs": {"class": "x", "tabindex": 3, "onclick": "evil()"},
                   "children": [{"text": "Save"}, {"kind": "raw", "text": "<b>!</b>"}]}
    }
  }
}`

func TestDecodeJSON(t *testing.T) {
	d := cell.NewDispatcher(nil)
	doc, err := Decode([]byte(sampleJSON), FormatJSON, d)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if doc.Title != "Demo" {
		t.Errorf("Title = %q", doc.Title)
	}
	root := doc.Root
	if root.ID != "b1" || root.Type != "Button" {
		t.Errorf("root = %s/%s", root.ID, root.Type)
	}
	if got := strings.Join(root.ExtraData.Classes, " "); got != "btn primary" {
		t.Errorf("Classes = %q", got)
	}

	cb := root.ExtraData.Events["onclick"]
	if cb == nil || cb != d.Lookup("b1", "onclick") {
		t.Fatal("onclick should be bound through the dispatcher")
	}
	if cb.Payload()["action"] != "save" {
		t.Errorf("Payload = %v", cb.Payload())
	}

	child := root.NamedChildren["content"]
	if child == nil || child.Type != "Text" || child.ExtraData.Classes[0] != "label" {
		t.Errorf("named child = %+v", child)
	}

	span := root.Replacements["contents"]
	if span == nil || span.Tag != "span" {
		t.Fatalf("replacement = %+v", span)
	}
	if span.Props["class"] != "x" || span.Props["tabindex"] != "3" {
		t.Errorf("attrs = %v", span.Props)
	}
	if _, ok := span.Props["onclick"]; ok {
		t.Error("event attributes from documents should be dropped")
	}
	if len(span.Children) != 2 || span.Children[0].Kind != vdom.KindText || span.Children[1].Kind != vdom.KindRaw {
		t.Errorf("children = %+v", span.Children)
	}
}

func TestDecodeBindsStableCallbacks(t *testing.T) {
	d := cell.NewDispatcher(nil)
	first, err := Decode([]byte(sampleJSON), FormatJSON, d)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Decode([]byte(sampleJSON), FormatJSON, d)
	if err != nil {
		t.Fatal(err)
	}

	if first.Root.ExtraData.Events["onclick"] != second.Root.ExtraData.Events["onclick"] {
		t.Error("re-decoding should keep callback identity")
	}
}

func TestDecodeMissingExtraDataStaysNil(t *testing.T) {
	doc, err := Decode([]byte(`{"root": {"id": "b1", "type": "Button"}}`), FormatJSON, nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Root.ExtraData != nil {
		t.Errorf("ExtraData = %+v, want nil", doc.Root.ExtraData)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		wantText string
	}{
		{"bad json", `{"root": `, "E020", ""},
		{"not an object", `[1, 2]`, "E020", ""},
		{"no root", `{"title": "x"}`, "E020", ""},
		{"wrong shape", `{"root": {"id": "b1", "type": "Button", "extraData": {"events": {"onclick": 5}}}}`, "E020", ""},
		{"root missing type", `{"root": {"id": "b1"}}`, "E022", "root has no type"},
		{"child missing type", `{"root": {"id": "b1", "type": "Button", "namedChildren": {"content": {"id": "c"}}}}`, "E022", "root.namedChildren.content"},
		{"unknown node kind", `{"root": {"id": "b1", "type": "Button", "replacements": {"contents": {"kind": "comment"}}}}`, "E023", "root.replacements.contents"},
		{"element without tag", `{"root": {"id": "b1", "type": "Button", "replacements": {"contents": {"kind": "element"}}}}`, "E023", "without tag"},
		{"nested bad node", `{"root": {"id": "b1", "type": "Button", "replacements": {"contents": {"tag": "b", "children": [{"kind": "x"}]}}}}`, "E023", "children[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), FormatJSON, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := cellerr.Code(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
			var ce *cellerr.Error
			if errors.As(err, &ce) && tt.wantText != "" && !strings.Contains(ce.Detail, tt.wantText) {
				t.Errorf("detail = %q, want it to mention %q", ce.Detail, tt.wantText)
			}
		})
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte(`{}`), Format(9), nil)
	if cellerr.Code(err) != "E020" || !errors.Is(err, cellerr.New("E021")) {
		t.Errorf("error = %v, want E020 wrapping E021", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		t.Run(f.String(), func(t *testing.T) {
			d := cell.NewDispatcher(nil)
			orig, err := Decode([]byte(sampleJSON), FormatJSON, d)
			if err != nil {
				t.Fatal(err)
			}

			data, err := Marshal(orig, f)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			detected, err := DetectFormat("", data)
			if err != nil || detected != f {
				t.Fatalf("DetectFormat() = %v, %v; want %v", detected, err, f)
			}

			back, err := Decode(data, f, d)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if back.Title != orig.Title || back.Root.ID != orig.Root.ID {
				t.Errorf("header changed: %+v", back)
			}
			if back.Root.ExtraData.Events["onclick"] != orig.Root.ExtraData.Events["onclick"] {
				t.Error("callback identity lost")
			}
			if !vdom.Equal(orig.Root.Replacements["contents"], back.Root.Replacements["contents"]) {
				t.Error("replacement changed")
			}
			if back.Root.NamedChildren["content"].ExtraData.Classes[0] != "label" {
				t.Error("named child changed")
			}
		})
	}
}

func TestMarshalUnsupportedFormat(t *testing.T) {
	if _, err := Marshal(&Document{}, Format(7)); cellerr.Code(err) != "E021" {
		t.Errorf("error = %v, want E021", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		want    Format
		wantErr bool
	}{
		{"json ext", "doc.json", nil, FormatJSON, false},
		{"msgpack ext", "doc.msgpack", nil, FormatMsgpack, false},
		{"mp ext", "DOC.MP", nil, FormatMsgpack, false},
		{"sniff json", "doc", []byte("  \n{}"), FormatJSON, false},
		{"sniff fixmap", "doc", []byte{0x82}, FormatMsgpack, false},
		{"sniff map16", "doc", []byte{0xde, 0x00, 0x01}, FormatMsgpack, false},
		{"empty", "doc", nil, 0, true},
		{"garbage", "doc.txt", []byte("hello"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, " JSON ": FormatJSON, "msgpack": FormatMsgpack, "mp": FormatMsgpack} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("yaml"); cellerr.Code(err) != "E021" {
		t.Errorf("ParseFormat(yaml) error = %v", err)
	}
	if FormatMsgpack.Ext() != ".msgpack" || FormatJSON.Ext() != ".json" {
		t.Error("unexpected extensions")
	}
}

func TestNodeKindDefaults(t *testing.T) {
	text, err := (&Node{Text: "hi"}).ToVNode("n")
	if err != nil || text.Kind != vdom.KindText {
		t.Errorf("text default = %+v, %v", text, err)
	}
	el, err := (&Node{Tag: "em"}).ToVNode("n")
	if err != nil || el.Kind != vdom.KindElement {
		t.Errorf("element default = %+v, %v", el, err)
	}
	frag, err := (&Node{Kind: KindFragment, Children: []*Node{{Text: "a"}}}).ToVNode("n")
	if err != nil || frag.Kind != vdom.KindFragment || len(frag.Children) != 1 {
		t.Errorf("fragment = %+v, %v", frag, err)
	}
}

func TestFromVNodeDropsHandlers(t *testing.T) {
	v := vdom.Button(vdom.ID("b"), vdom.OnClick(func() {}), vdom.Disabled(), vdom.A("hidden", false), vdom.Text("x"))
	v.HID = "h1"

	n := FromVNode(v)

	if _, ok := n.Attrs["onclick"]; ok {
		t.Error("handler serialized")
	}
	if _, ok := n.Attrs["hidden"]; ok {
		t.Error("false boolean should be dropped")
	}
	if n.Attrs["disabled"] != "true" || n.Attrs["id"] != "b" {
		t.Errorf("attrs = %v", n.Attrs)
	}
	if len(n.Children) != 1 || n.Children[0].Text != "x" {
		t.Errorf("children = %+v", n.Children)
	}
}
