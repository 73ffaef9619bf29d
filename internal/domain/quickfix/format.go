package quickfix

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/nix-mox/moxlint/internal/domain"
)

const tabWidth = "    "

// Format returns the edits that strip trailing whitespace and expand
// leading tabs to four spaces each. A line needing both gets a single
// whole-line edit so the result never overlaps.
func Format(doc domain.Document) []domain.Edit {
	var edits []domain.Edit
	for i, line := range doc.Lines() {
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))

		switch {
		case tabs > 0:
			newText := ""
			if content := strings.TrimLeft(trimmed, "\t"); content != "" {
				newText = strings.Repeat(tabWidth, tabs) + content
			}
			edits = append(edits, domain.Edit{
				Range:   domain.Range{Line: i, Start: 0, End: len(line)},
				NewText: newText,
			})
		case trimmed != line:
			edits = append(edits, domain.Edit{
				Range:   domain.Range{Line: i, Start: len(trimmed), End: len(line)},
				NewText: "",
			})
		}
	}
	return edits
}

// FixAll synthesizes one edit per fixable finding. When several findings
// produce overlapping edits the first one wins.
func FixAll(findings []domain.Finding, doc domain.Document) []domain.Edit {
	var edits []domain.Edit
	for _, f := range findings {
		e, ok := Synthesize(f, doc)
		if !ok || overlapsAny(e, edits) {
			continue
		}
		edits = append(edits, e)
	}
	return edits
}

// Apply applies edits to doc and returns the new text. Edits must not
// overlap; they may be given in any order.
func Apply(doc domain.Document, edits []domain.Edit) (string, error) {
	sorted := make([]domain.Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Range, sorted[j].Range
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Start > b.Start
	})

	sep := lineSeparator(doc.Text())
	lines := append([]string(nil), doc.Lines()...)
	for i, e := range sorted {
		if i > 0 && overlaps(e, sorted[i-1]) {
			return "", fmt.Errorf("overlapping edits on line %d", e.Range.Line)
		}
		r := e.Range
		if r.Line < 0 || r.Line >= len(lines) {
			return "", fmt.Errorf("edit line %d out of range", r.Line)
		}
		line := lines[r.Line]
		if r.Start < 0 || r.End > len(line) || r.Start > r.End {
			return "", fmt.Errorf("edit columns %d-%d out of range on line %d", r.Start, r.End, r.Line)
		}
		lines[r.Line] = line[:r.Start] + matchSeparator(e.NewText, sep) + line[r.End:]
	}
	return strings.Join(lines, sep), nil
}

// NormalizeNewlines rewrites the line breaks in text to the separator doc
// uses, so inserted blocks match a CRLF document.
func NormalizeNewlines(doc domain.Document, text string) string {
	return matchSeparator(text, lineSeparator(doc.Text()))
}

func matchSeparator(text, sep string) string {
	if sep == "\n" || !strings.Contains(text, "\n") {
		return text
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", sep)
}

func lineSeparator(text string) string {
	if strings.Contains(text, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func overlapsAny(e domain.Edit, others []domain.Edit) bool {
	for _, o := range others {
		if overlaps(e, o) {
			return true
		}
	}
	return false
}

// overlaps treats two insertions at the same point as overlapping, since
// their order would be ambiguous.
func overlaps(a, b domain.Edit) bool {
	if a.Range.Line != b.Range.Line {
		return false
	}
	if a.Range.Start == b.Range.Start {
		return true
	}
	return a.Range.Start < b.Range.End && b.Range.Start < a.Range.End
}
