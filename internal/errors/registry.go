package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Render errors (E001-E019)
	"E001": {
		Category: CategoryRender,
		Message:  "Unknown cell type",
		Detail:   "The document references a cell type that has no registered renderer.",
	},
	"E002": {
		Category: CategoryRender,
		Message:  "Cell render panicked",
		Detail:   "The cell's render function panicked. This usually means the cell received malformed props, such as a missing extraData record.",
	},
	"E003": {
		Category: CategoryRender,
		Message:  "Cell nesting too deep",
		Detail:   "The named-child chain exceeds the configured maximum depth. Check the document for cycles or raise render.maxDepth.",
	},
	"E004": {
		Category: CategoryRender,
		Message:  "Nil cell",
		Detail:   "The registry returned a nil renderer for this cell type.",
	},

	// Document errors (E020-E039)
	"E020": {
		Category: CategoryDocument,
		Message:  "Document decode failed",
		Detail:   "The document is not valid JSON or msgpack, or does not match the cell schema.",
	},
	"E021": {
		Category: CategoryDocument,
		Message:  "Unsupported document format",
		Detail:   "Documents must be JSON (.json) or msgpack (.msgpack, .mp).",
	},
	"E022": {
		Category: CategoryDocument,
		Message:  "Cell missing type",
		Detail:   "Every cell in a document must name its type.",
	},
	"E023": {
		Category: CategoryDocument,
		Message:  "Invalid node",
		Detail:   "A replacement subtree contains a node with an unknown kind or an element without a tag.",
	},

	// Config errors (E040-E059)
	"E040": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No cells.json or cells.toml was found in the directory.",
	},
	"E041": {
		Category: CategoryConfig,
		Message:  "Config parse failed",
		Detail:   "The configuration file could not be parsed.",
	},
	"E042": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range.",
	},

	// Source errors (E060-E079)
	"E060": {
		Category: CategorySource,
		Message:  "Document source not found",
		Detail:   "The document path does not exist or cannot be read.",
	},
	"E061": {
		Category: CategorySource,
		Message:  "S3 fetch failed",
		Detail:   "The document could not be downloaded from S3. Check the bucket, key, region and credentials.",
	},

	// CLI errors (E080-E099)
	"E080": {
		Category: CategoryCLI,
		Message:  "Render incomplete",
		Detail:   "One or more cells failed to render and --strict was set.",
	},
	"E081": {
		Category: CategoryCLI,
		Message:  "Config file exists",
		Detail:   "A configuration file already exists in the target directory.",
	},
}

// AllCodes returns all registered error codes in sorted order.
func AllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
// It is not safe to call concurrently with New.
func Register(code string, template Template) {
	registry[code] = template
}
