package tui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
	"github.com/olekukonko/tablewriter"
)

func newTable(buf *bytes.Buffer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// RenderMetrics renders parsed samples as a table. When nothing parsed the
// raw text is returned unchanged.
func RenderMetrics(report domain.MetricsReport) string {
	if len(report.Samples) == 0 {
		return report.Raw
	}

	var buf bytes.Buffer
	table := newTable(&buf, []string{"Metric", "Type", "Value", "Help"})
	for _, s := range report.Samples {
		table.Append([]string{s.Name, s.Type, s.Value, s.Help})
	}
	table.SetFooter([]string{fmt.Sprintf("%d samples", len(report.Samples)), "", "", report.Path})
	table.Render()
	return buf.String()
}

// RenderCatalog lists the library functions with their definition file.
func RenderCatalog(entries []knowledge.FunctionEntry) string {
	var buf bytes.Buffer
	table := newTable(&buf, []string{"Function", "Defined in", "Documentation"})
	for _, e := range entries {
		table.Append([]string{e.Name, e.SourceLocation, e.Documentation})
	}
	table.Render()
	return buf.String()
}

// RenderRules lists the diagnostic rules.
func RenderRules(rules []diagnostics.RuleInfo) string {
	var buf bytes.Buffer
	table := newTable(&buf, []string{"Code", "Severity", "Fixable", "Description"})
	for _, r := range rules {
		fixable := ""
		if r.Fixable {
			fixable = "yes"
		}
		table.Append([]string{string(r.Code), r.Severity.String(), fixable, r.Description})
	}
	table.Render()
	return buf.String()
}

// RenderHistory renders recorded lint runs, oldest first, with the error
// delta against the previous run.
func RenderHistory(entries []domain.LintSummary) string {
	if len(entries) == 0 {
		return dimStyle.Render("No lint runs recorded yet. Run `moxlint lint --record`.") + "\n"
	}

	var buf bytes.Buffer
	table := newTable(&buf, []string{"When", "Commit", "Files", "Errors", "Warnings", "Info", "Δ errors"})
	for i, e := range entries {
		delta := ""
		if i > 0 {
			delta = fmt.Sprintf("%+d", e.Errors-entries[i-1].Errors)
		}
		table.Append([]string{
			e.Timestamp.Local().Format(time.DateTime),
			shortHash(e.CommitHash),
			fmt.Sprint(e.Files),
			fmt.Sprint(e.Errors),
			fmt.Sprint(e.Warnings),
			fmt.Sprint(e.Infos),
			delta,
		})
	}
	table.Render()
	return buf.String()
}

// RenderEdits describes pending or applied edits per file.
func RenderEdits(files []domain.FileEdits, dryRun bool) string {
	var b strings.Builder
	total := 0
	for _, f := range files {
		if len(f.Edits) == 0 {
			continue
		}
		total += len(f.Edits)
		verb := "fixed"
		if dryRun {
			verb = "would fix"
		}
		fmt.Fprintf(&b, "  %s  %s\n", fileStyle.Render(f.Path), dimStyle.Render(fmt.Sprintf("%s %s", verb, plural(len(f.Edits), "edit"))))
		for _, e := range f.Edits {
			fmt.Fprintf(&b, "    %s  %s\n",
				dimStyle.Render(fmt.Sprintf("%d:%d-%d", e.Range.Line+1, e.Range.Start+1, e.Range.End+1)),
				describeEdit(e))
		}
	}
	if total == 0 {
		return "  " + passStyle.Render("Nothing to fix.") + "\n"
	}
	return b.String()
}

func describeEdit(e domain.Edit) string {
	switch {
	case e.NewText == "":
		return "delete"
	case e.Range.Start == e.Range.End:
		return "insert " + fmt.Sprintf("%q", e.NewText)
	default:
		return "replace with " + fmt.Sprintf("%q", e.NewText)
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
