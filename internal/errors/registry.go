package errors

import "sort"

// Template defines a registered error.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// Binding
	"VB001": {
		Category: CategoryBinding,
		Message:  "Root element not found",
		Detail:   "The el selector did not match any element in the template.",
	},
	"VB002": {
		Category: CategoryBinding,
		Message:  "Binding failed",
		Detail:   "A v-model write or an event handler could not be carried out.",
	},
	"VB003": {
		Category: CategoryBinding,
		Message:  "Duplicate property",
		Detail:   "A computed or method name collides with a data key.",
	},
	"VB004": {
		Category: CategoryBinding,
		Message:  "Invalid event",
		Detail:   "Events are written as type:#selector or type:#selector=value.",
	},

	// Manifest
	"VB101": {
		Category: CategoryManifest,
		Message:  "Invalid manifest",
		Detail:   "The manifest could not be decoded.",
	},
	"VB102": {
		Category: CategoryManifest,
		Message:  "Invalid method step",
		Detail:   "Each method step takes exactly one of set, call or copy.",
	},
	"VB103": {
		Category: CategoryManifest,
		Message:  "Invalid data",
		Detail:   "The data section must be a mapping.",
	},

	// Source
	"VB201": {
		Category: CategorySource,
		Message:  "Source not found",
		Detail:   "The file or object could not be read.",
	},
	"VB202": {
		Category: CategorySource,
		Message:  "Unsupported source",
		Detail:   "Sources are local paths, file:// URIs or s3://bucket/key URIs.",
	},

	// Config
	"VB301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "vbind.yaml or a VBIND_ environment variable holds an invalid value.",
	},

	// Server
	"VB401": {
		Category: CategoryServer,
		Message:  "Server failed",
		Detail:   "The live server stopped with an error.",
	},

	// CLI
	"VB901": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "A required flag or argument was not given.",
	},
}

// Codes returns all registered codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template.
func Register(code string, t Template) {
	registry[code] = t
}
