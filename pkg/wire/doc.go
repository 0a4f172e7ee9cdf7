// Package wire decodes and encodes cell documents.
//
// A document is a title and a root cell. The same schema is accepted as
// JSON or msgpack:
//
//	{"title": "Demo",
//	 "root": {"id": "b1", "type": "Button",
//	          "extraData": {"events": {"onclick": {"action": "save"}},
//	                        "classes": ["btn"]},
//	          "replacements": {"contents": {"tag": "span",
//	                                        "children": [{"text": "Save"}]}}}}
//
// Events in a document carry a payload only. Decoding binds each one to a
// callback through a cell.Binder, so decoding the same document twice
// with the same dispatcher yields identical callback pointers. Pass a
// Dispatcher.Stage to keep a failed decode from changing live bindings.
package wire
