package wire

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/vmihailenco/msgpack/v5"

	cellerr "github.com/vango-dev/cells/internal/errors"
	"github.com/vango-dev/cells/pkg/cell"
	"github.com/vango-dev/cells/pkg/vdom"
)

// Document is a decoded cell document.
type Document struct {
	Title string
	Root  *cell.Description
}

// Decode parses data in format f. Events are bound through d; a nil
// binder gets a fresh dispatcher that logs fired events.
func Decode(data []byte, f Format, d cell.Binder) (*Document, error) {
	raw, err := unmarshalGeneric(data, f)
	if err != nil {
		return nil, cellerr.New("E020").Wrap(err)
	}

	var dw documentWire
	if err := decodeMap(raw, &dw); err != nil {
		return nil, cellerr.New("E020").Wrap(err)
	}
	if dw.Root == nil {
		return nil, cellerr.New("E020").WithDetail("The document has no root cell.")
	}

	if d == nil {
		d = cell.NewDispatcher(nil)
	}
	root, err := dw.Root.toDescription("root", d)
	if err != nil {
		return nil, err
	}
	return &Document{Title: dw.Title, Root: root}, nil
}

// unmarshalGeneric decodes into a generic map so both formats share one
// schema pass.
func unmarshalGeneric(data []byte, f Format) (map[string]any, error) {
	var raw map[string]any
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatMsgpack:
		if err := msgpack.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, cellerr.New("E021")
	}
	if raw == nil {
		return nil, fmt.Errorf("document is not an object")
	}
	return raw, nil
}

// decodeMap fills out from a generic map using the json struct tags.
// Scalar attribute values are converted to strings.
func decodeMap(input any, out any) error {
	dconfig := &mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func (c *cellWire) toDescription(path string, d cell.Binder) (*cell.Description, error) {
	if c.Type == "" {
		return nil, cellerr.New("E022").WithCell(c.ID, "").WithDetail(path + " has no type.")
	}

	desc := &cell.Description{ID: c.ID, Type: c.Type}

	if c.ExtraData != nil {
		desc.ExtraData = &cell.ExtraData{
			Events:  make(map[string]*cell.Callback, len(c.ExtraData.Events)),
			Classes: c.ExtraData.Classes,
		}
		for name, payload := range c.ExtraData.Events {
			desc.ExtraData.Events[name] = d.Bind(c.ID, name, payload)
		}
	}

	if len(c.NamedChildren) > 0 {
		desc.NamedChildren = make(map[string]*cell.Description, len(c.NamedChildren))
		for slot, child := range c.NamedChildren {
			if child == nil {
				continue
			}
			cd, err := child.toDescription(path+".namedChildren."+slot, d)
			if err != nil {
				return nil, err
			}
			desc.NamedChildren[slot] = cd
		}
	}

	if len(c.Replacements) > 0 {
		desc.Replacements = make(map[string]*vdom.VNode, len(c.Replacements))
		for slot, node := range c.Replacements {
			v, err := node.ToVNode(path + ".replacements." + slot)
			if err != nil {
				return nil, cellerr.FromError(err, "E023").WithCell(c.ID, c.Type)
			}
			if v != nil {
				desc.Replacements[slot] = v
			}
		}
	}

	return desc, nil
}
