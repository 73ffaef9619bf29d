// Package quickfix turns findings into text edits and formats documents.
package quickfix

import (
	"strings"

	"github.com/nix-mox/moxlint/internal/domain"
)

const tryOpen = "try {"

var titles = map[domain.Code]string{
	domain.CodeTrailingWhitespace:   "Remove trailing whitespace",
	domain.CodeMissingErrorHandling: "Add error handling",
}

// Title returns the code-action title for a fixable code.
func Title(code domain.Code) (string, bool) {
	t, ok := titles[code]
	return t, ok
}

// Synthesize proposes the edit that remediates f in doc. Codes without a
// registered fix, and try blocks that never close, yield no edit.
func Synthesize(f domain.Finding, doc domain.Document) (domain.Edit, bool) {
	switch f.Code {
	case domain.CodeTrailingWhitespace:
		return domain.Edit{Range: f.Range(), NewText: ""}, true
	case domain.CodeMissingErrorHandling:
		return addCatch(f, doc)
	default:
		return domain.Edit{}, false
	}
}

// addCatch inserts a catch clause right after the brace closing the try
// block that starts on f.Line.
func addCatch(f domain.Finding, doc domain.Document) (domain.Edit, bool) {
	first := doc.Line(f.Line)
	offset := strings.Index(first, tryOpen)
	if offset < 0 {
		return domain.Edit{}, false
	}

	line, col, ok := findClosingBrace(doc, f.Line, offset)
	if !ok {
		return domain.Edit{}, false
	}

	return domain.Edit{
		Range:   domain.Range{Line: line, Start: col, End: col},
		NewText: catchTemplate(leadingWhitespace(doc.Line(line))),
	}, true
}

func catchTemplate(indent string) string {
	return " catch {|err|\n" +
		indent + "    print $\"Error: ($err.msg)\"\n" +
		indent + "}"
}

// findClosingBrace counts braces from offset on the start line onwards and
// returns the position just past the brace that brings the depth back to
// zero. Braces inside quoted strings and after a '#' comment marker are not
// counted. A '#' only opens a comment at line start or after whitespace.
func findClosingBrace(doc domain.Document, startLine, offset int) (int, int, bool) {
	depth := 0
	for i := startLine; i < doc.LineCount(); i++ {
		line := doc.Line(i)
		from := 0
		if i == startLine {
			from = offset
		}
		var quote byte
	scan:
		for j := from; j < len(line); j++ {
			c := line[j]
			if quote != 0 {
				switch {
				case c == '\\' && quote == '"':
					j++
				case c == quote:
					quote = 0
				}
				continue
			}
			switch c {
			case '"', '\'', '`':
				quote = c
			case '#':
				if j == 0 || line[j-1] == ' ' || line[j-1] == '\t' {
					break scan
				}
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, j + 1, true
				}
			}
		}
	}
	return 0, 0, false
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
