package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/nix-mox/moxlint/internal/domain"
)

// ── nix-mox palette ──
var (
	accent  = lipgloss.Color("#7E9CD8") // nix blue
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	codeStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderLintReport renders findings grouped by file with a source snippet
// and a caret under each flagged span.
func RenderLintReport(report domain.LintReport) string {
	var b strings.Builder

	b.WriteString("  " + headerStyle.Render("moxlint") + "  " + dimStyle.Render(fmt.Sprintf("%d files", len(report.Files))))
	b.WriteString("\n\n")

	for _, file := range report.Files {
		if len(file.Findings) == 0 {
			continue
		}
		b.WriteString("  " + fileStyle.Render(file.Path) + "\n")
		for _, f := range file.Findings {
			renderFinding(&b, f, file.Lines)
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n")
	b.WriteString("  " + RenderSummary(report) + "\n")
	return b.String()
}

// RenderSummary returns the one-line count of findings per severity.
func RenderSummary(report domain.LintReport) string {
	errs, warns, infos := report.Counts()
	if errs+warns+infos == 0 {
		return passStyle.Render("No issues found.")
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, errorTagStyle.Render(plural(errs, "error")))
	}
	if warns > 0 {
		parts = append(parts, warnTagStyle.Render(plural(warns, "warning")))
	}
	if infos > 0 {
		parts = append(parts, infoTagStyle.Render(fmt.Sprintf("%d info", infos)))
	}
	return strings.Join(parts, "  ")
}

func renderFinding(b *strings.Builder, f domain.Finding, lines []string) {
	pos := dimStyle.Render(fmt.Sprintf("%d:%d", f.Line+1, f.Start+1))
	fmt.Fprintf(b, "    %s  %s  %s  %s\n",
		padRight(pos, 8), severityTag(f.Severity), f.Message, codeStyle.Render(string(f.Code)))

	if f.Line < 0 || f.Line >= len(lines) {
		return
	}
	line := lines[f.Line]
	fmt.Fprintf(b, "      %s\n", dimStyle.Render(line))
	fmt.Fprintf(b, "      %s\n", severityStyle(f.Severity).Render(Caret(line, f.Start, f.End)))
}

// Caret returns a marker line whose carets sit under the display columns of
// line[start:end]. Wide runes count for two cells.
func Caret(line string, start, end int) string {
	start = clamp(start, 0, len(line))
	end = clamp(end, start, len(line))
	pad := runewidth.StringWidth(line[:start])
	width := runewidth.StringWidth(line[start:end])
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + strings.Repeat("^", width)
}

func severityTag(s domain.Severity) string {
	return severityStyle(s).Render(padRight(s.String(), 7))
}

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityError:
		return errorTagStyle
	case domain.SeverityWarning:
		return warnTagStyle
	default:
		return infoTagStyle
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
