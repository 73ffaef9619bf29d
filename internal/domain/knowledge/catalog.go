// Package knowledge holds the fixed catalog of nix-mox library functions
// and answers completion, hover and definition queries against it.
package knowledge

// FunctionEntry describes one library function.
type FunctionEntry struct {
	Name           string `json:"name"`
	Documentation  string `json:"documentation"`
	SourceLocation string `json:"source_location,omitempty"`
	Snippet        string `json:"snippet,omitempty"`
}

// catalogNames lists every completable function, in presentation order.
var catalogNames = []string{
	"detect_platform", "validate_platform", "get_platform_info",
	"log_info", "log_warn", "log_error", "log_debug",
	"create_error", "handle_script_error", "suggest_recovery",
	"track_test", "assert_true", "assert_false", "assert_equal",
	"validate_script_security", "check_dangerous_patterns",
	"start_performance_monitor", "end_performance_monitor",
	"load_config", "save_config", "merge_config", "validate_config",
}

// hoverDocs is deliberately smaller than catalogNames.
var hoverDocs = map[string]string{
	"detect_platform":          "Detects the current platform (linux, darwin, windows)",
	"log_info":                 "Logs an informational message with timestamp",
	"track_test":               "Records test execution results for coverage reporting",
	"validate_script_security": "Validates script for security threats and dangerous patterns",
}

// definitionFiles maps functions to the workspace-relative file declaring them.
var definitionFiles = map[string]string{
	"detect_platform": "scripts/lib/platform.nu",
	"log_info":        "scripts/lib/logging.nu",
	"create_error":    "scripts/lib/error-handling.nu",
	"track_test":      "scripts/testing/lib/test-utils.nu",
}

var catalog = buildCatalog()

func buildCatalog() []FunctionEntry {
	entries := make([]FunctionEntry, 0, len(catalogNames))
	for _, name := range catalogNames {
		doc := "nix-mox function: `" + name + "`"
		if h, ok := hoverDocs[name]; ok {
			doc = h
		}
		entries = append(entries, FunctionEntry{
			Name:           name,
			Documentation:  doc,
			SourceLocation: definitionFiles[name],
			Snippet:        name + " $1",
		})
	}
	return entries
}

// Catalog returns a copy of the full function table.
func Catalog() []FunctionEntry {
	out := make([]FunctionEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Size is the number of catalog entries.
func Size() int { return len(catalog) }
