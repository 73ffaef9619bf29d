package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/tui"
	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLintCmd(v *viper.Viper) *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
		opts       application.LintOptions
	)

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint Nushell scripts",
		Long:  "Scan .nu files for trailing whitespace, dangerous commands, unhandled try blocks, hardcoded home paths and TODO/FIXME markers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}

			opts.Paths = args
			report, err := svc.lint.LintWorkspace(cmd.Context(), root, opts)
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				if err := renderJSON(out, report); err != nil {
					return err
				}
			case isTerminal(out):
				fmt.Fprint(out, tui.RenderLintReport(*report))
			default:
				renderPlain(out, report)
			}

			if ciMode && report.HasErrors() {
				errs, _, _ := report.Counts()
				return fmt.Errorf("%d error findings", errs)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output findings as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 when any error finding exists")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "Lint only modified and untracked scripts")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Append a summary of this run to the lint history")

	return cmd
}

func newFixCmd(v *viper.Viper) *cobra.Command {
	var (
		dryRun   bool
		showDiff bool
		opts     application.LintOptions
	)

	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Apply quick fixes to Nushell scripts",
		Long:  "Remove trailing whitespace and add catch blocks to unhandled try blocks. With --dry-run the edits are printed as JSON and nothing is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}

			opts.Paths = args
			files, err := svc.fix.Fix(cmd.Context(), root, opts, dryRun || showDiff)
			if err != nil {
				return fmt.Errorf("fix failed: %w", err)
			}

			if showDiff {
				return renderDiffs(cmd.OutOrStdout(), root, files)
			}
			if dryRun {
				return renderJSON(cmd.OutOrStdout(), files)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderEdits(files, false))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the edits as JSON without writing files")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff without writing files")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "Fix only modified and untracked scripts")

	return cmd
}

func newFmtCmd(v *viper.Viper) *cobra.Command {
	var (
		check    bool
		showDiff bool
		opts     application.LintOptions
	)

	cmd := &cobra.Command{
		Use:   "fmt [paths...]",
		Short: "Format Nushell scripts",
		Long:  "Strip trailing whitespace and expand leading tabs to four spaces.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}

			opts.Paths = args
			files, err := svc.fix.Format(cmd.Context(), root, opts, check || showDiff)
			if err != nil {
				return fmt.Errorf("format failed: %w", err)
			}

			if showDiff {
				if err := renderDiffs(cmd.OutOrStdout(), root, files); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderEdits(files, check))
			}
			if check && len(files) > 0 {
				return fmt.Errorf("%d files need formatting", len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report files needing formatting without writing; exit 1 if any")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff without writing files")
	cmd.Flags().BoolVar(&opts.Changed, "changed", false, "Format only modified and untracked scripts")

	return cmd
}

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the lint rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), diagnostics.Rules())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(diagnostics.Rules()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")

	return cmd
}

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded lint runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}

			entries, err := svc.lint.History(root)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")

	return cmd
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderDiffs prints the unified diff of each file's pending edits. The
// files must not have been rewritten yet.
func renderDiffs(w io.Writer, root string, files []domain.FileEdits) error {
	for _, f := range files {
		path := f.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, filepath.FromSlash(path))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Path, err)
		}
		doc := domain.NewDocument(string(data))
		after, err := quickfix.Apply(doc, f.Edits)
		if err != nil {
			return fmt.Errorf("applying edits to %s: %w", f.Path, err)
		}
		diff, err := tui.RenderDiff(f.Path, doc.Text(), after)
		if err != nil {
			return err
		}
		fmt.Fprint(w, diff)
	}
	return nil
}

// renderPlain prints one compiler-style line per finding.
func renderPlain(w io.Writer, report *domain.LintReport) {
	for _, file := range report.Files {
		for _, f := range file.Findings {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s [%s]\n", file.Path, f.Line+1, f.Start+1, f.Severity, f.Message, f.Code)
		}
	}
	errs, warns, infos := report.Counts()
	fmt.Fprintf(w, "%d files, %d errors, %d warnings, %d info\n", len(report.Files), errs, warns, infos)
}
