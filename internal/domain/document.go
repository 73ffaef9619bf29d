package domain

import "strings"

// Document is an immutable snapshot of a script's text split into lines.
type Document struct {
	text  string
	lines []string
}

// NewDocument splits text on "\n". A trailing "\r" is dropped from each
// line so CRLF files scan the same as LF files.
func NewDocument(text string) Document {
	if text == "" {
		return Document{}
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return Document{text: text, lines: lines}
}

func (d Document) Text() string { return d.text }

func (d Document) Lines() []string { return d.lines }

func (d Document) LineCount() int { return len(d.lines) }

// Line returns line i, or "" when i is out of range.
func (d Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// IsNushellScript reports whether path has the .nu extension.
func IsNushellScript(path string) bool {
	return strings.HasSuffix(path, ".nu")
}
