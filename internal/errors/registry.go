package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Store Errors (S001-S099)
	// ============================================

	"S001": {
		Category: CategoryStore,
		Message:  "Value is not storable",
		Detail:   "A store root must be a JSON object or array. Scalars, null and frozen values cannot be wrapped.",
	},
	"S002": {
		Category: CategoryStore,
		Message:  "Path type mismatch",
		Detail:   "The path walks through a value that is not an object or array, or uses a segment the container cannot interpret (an index on an object, a key on an array).",
	},
	"S003": {
		Category: CategoryStore,
		Message:  "Direct mutation not allowed",
		Detail:   "Store views are read-only. All changes must go through the setter.",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No vstore.json or vstore.yaml was found in the current directory or any parent.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be parsed.",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or not one of the accepted values.",
	},

	// ============================================
	// CLI Errors (X001-X099)
	// ============================================

	"X001": {
		Category: CategoryCLI,
		Message:  "Cannot read input file",
		Detail:   "The document or script file could not be opened.",
	},
	"X002": {
		Category: CategoryCLI,
		Message:  "Invalid document",
		Detail:   "Documents must be JSON or YAML whose top level is an object or an array.",
	},
	"X003": {
		Category: CategoryCLI,
		Message:  "Invalid script step",
		Detail:   `Each step is {"path": [...], "value": v}, {"path": [...], "op": name} or {"batch": [...steps]}.`,
	},
	"X004": {
		Category: CategoryCLI,
		Message:  "Unknown operation",
		Detail:   "Supported operations are remove, replace, increment, double and append.",
	},
	"X005": {
		Category: CategoryCLI,
		Message:  "Invalid watch path",
		Detail:   "Watch paths are dot-separated keys and indices, such as user.name or rows.0.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
