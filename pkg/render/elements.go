package render

// inlineElements are elements that are typically rendered inline
// and don't need newlines in pretty-printed output.
var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"br":     true,
	"button": true,
	"cite":   true,
	"code":   true,
	"em":     true,
	"i":      true,
	"kbd":    true,
	"label":  true,
	"mark":   true,
	"q":      true,
	"s":      true,
	"samp":   true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"time":   true,
	"u":      true,
	"var":    true,
	"wbr":    true,
}

// isBlockElement reports whether pretty output may break lines inside tag.
// pre and textarea keep their content verbatim.
func isBlockElement(tag string) bool {
	return !inlineElements[tag] && tag != "pre" && tag != "textarea"
}

// booleanAttrs are attributes that don't need a value.
// When true, they're rendered as just the attribute name.
var booleanAttrs = map[string]bool{
	"autofocus":      true,
	"checked":        true,
	"defer":          true,
	"disabled":       true,
	"formnovalidate": true,
	"hidden":         true,
	"multiple":       true,
	"open":           true,
	"readonly":       true,
	"required":       true,
	"selected":       true,
}

// isBooleanAttr returns true if the attribute is a boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
