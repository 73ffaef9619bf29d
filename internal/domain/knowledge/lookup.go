package knowledge

// Candidate is one completion suggestion. Snippet uses $1 for the single
// argument placeholder.
type Candidate struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation"`
	Snippet       string `json:"snippet"`
}

// CompletionContext is whatever the host knows about the cursor. The
// catalog ignores it and always returns every candidate; hosts filter.
type CompletionContext struct {
	Prefix string
}

// Complete returns one candidate per catalog entry, in catalog order.
func Complete(_ CompletionContext) []Candidate {
	out := make([]Candidate, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, Candidate{
			Label:         e.Name,
			Documentation: "nix-mox function: `" + e.Name + "`",
			Snippet:       e.Snippet,
		})
	}
	return out
}

// Hover returns the documentation for word. Only exact matches count.
func Hover(word string) (string, bool) {
	doc, ok := hoverDocs[word]
	return doc, ok
}

// Definition returns the workspace-relative file declaring word. The caller
// decides whether the file actually exists.
func Definition(word string) (string, bool) {
	path, ok := definitionFiles[word]
	return path, ok
}

// WordAt returns the identifier covering byte offset col in line, with its
// [start, end) offsets. Identifiers are letters, digits, '_' and '-'.
func WordAt(line string, col int) (string, int, int) {
	if col < 0 || len(line) == 0 {
		return "", 0, 0
	}
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	if start == end {
		return "", col, col
	}
	return line[start:end], start, end
}

func isWordByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
