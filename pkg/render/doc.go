// Package render serializes VNode trees to HTML.
//
// The renderer produces deterministic output: attributes are written in
// sorted order, text and attribute values are escaped, void elements get
// no closing tag, and boolean attributes are written bare.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Event Props
//
// Props whose key starts with "on" hold host callbacks, not markup. They
// are never written as attributes. Each bound event is announced with a
// marker attribute instead:
//
//	<button data-on-click="true">
//
// # templ
//
// Component and Page expose rendered trees as templ.Component values so
// they can be composed with templ layouts and served by templ handlers.
//
// # Security
//
// All text content is escaped. KindRaw nodes are written verbatim and
// should only carry trusted markup.
package render
