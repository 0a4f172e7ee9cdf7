package wire

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/cell"
)

// Marshal encodes doc in format f. Callbacks are written as their bound
// payloads.
func Marshal(doc *Document, f Format) ([]byte, error) {
	dw := documentWire{Title: doc.Title, Root: fromDescription(doc.Root)}

	switch f {
	case FormatJSON:
		return json.MarshalIndent(dw, "", "  ")
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.SetSortMapKeys(true)
		if err := enc.Encode(dw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, cellerr.New("E021")
}

func fromDescription(d *cell.Description) *cellWire {
	if d == nil {
		return nil
	}
	c := &cellWire{ID: d.ID, Type: d.Type}

	if d.ExtraData != nil {
		c.ExtraData = &extraDataWire{Classes: d.ExtraData.Classes}
		for name, cb := range d.ExtraData.Events {
			if cb == nil {
				continue
			}
			if c.ExtraData.Events == nil {
				c.ExtraData.Events = make(map[string]map[string]any)
			}
			payload := cb.Payload()
			if payload == nil {
				payload = map[string]any{}
			}
			c.ExtraData.Events[name] = payload
		}
	}

	for slot, child := range d.NamedChildren {
		if c.NamedChildren == nil {
			c.NamedChildren = make(map[string]*cellWire)
		}
		c.NamedChildren[slot] = fromDescription(child)
	}
	for slot, node := range d.Replacements {
		if c.Replacements == nil {
			c.Replacements = make(map[string]*Node)
		}
		c.Replacements[slot] = FromVNode(node)
	}
	return c
}
