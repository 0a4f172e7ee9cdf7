package wire

// The types below mirror the document schema. Struct tags drive
// mapstructure on decode and both encoders on marshal.

type documentWire struct {
	Title string    `json:"title,omitempty"`
	Root  *cellWire `json:"root"`
}

type cellWire struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	ExtraData     *extraDataWire       `json:"extraData,omitempty"`
	NamedChildren map[string]*cellWire `json:"namedChildren,omitempty"`
	Replacements  map[string]*Node     `json:"replacements,omitempty"`
}

type extraDataWire struct {
	Events  map[string]map[string]any `json:"events,omitempty"`
	Classes []string                  `json:"classes,omitempty"`
}

// Node is the serializable form of a vdom.VNode. Event handlers never
// appear in it.
type Node struct {
	Kind     string            `json:"kind,omitempty"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []*Node           `json:"children,omitempty"`
	Text     string            `json:"text,omitempty"`
}

// Node kinds.
const (
	KindElement  = "element"
	KindText     = "text"
	KindRaw      = "raw"
	KindFragment = "fragment"
)
