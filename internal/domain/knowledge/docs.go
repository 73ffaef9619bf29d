package knowledge

import (
	"fmt"
	"strings"

	"github.com/fatih/camelcase"
)

// Title turns a function name such as "get_platform_info" or
// "getPlatformInfo" into "Get platform info".
func Title(name string) string {
	var words []string
	for _, part := range camelcase.Split(name) {
		part = strings.Trim(part, "_- ")
		if part == "" {
			continue
		}
		words = append(words, strings.ToLower(part))
	}
	if len(words) == 0 {
		return name
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// RenderMarkdown renders the catalog as a Markdown reference page.
func RenderMarkdown() string {
	var b strings.Builder
	b.WriteString("# nix-mox function reference\n\n")
	for _, e := range catalog {
		fmt.Fprintf(&b, "## %s\n\n", Title(e.Name))
		fmt.Fprintf(&b, "`%s`\n\n", e.Name)
		b.WriteString(e.Documentation)
		b.WriteString("\n\n")
		if e.SourceLocation != "" {
			fmt.Fprintf(&b, "Defined in `%s`.\n\n", e.SourceLocation)
		}
	}
	return b.String()
}
