package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/spf13/cobra"
)

const lintConfigFileName = ".moxlint.yaml"

// strictOverrides raises every warning rule to an error.
var strictOverrides = map[string]string{
	"missing-error-handling": "error",
	"hardcoded-path":         "error",
	"fixme":                  "error",
}

func newInitCmd() *cobra.Command {
	var (
		strict bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .moxlint.yaml lint configuration",
		Long:  "Create a .moxlint.yaml listing every rule, ready to disable rules, override severities or exclude paths.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, lintConfigFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", lintConfigFileName)
				}
			}

			if err := os.WriteFile(dest, []byte(generateLintConfig(strict)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", lintConfigFileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Report every warning rule as an error")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .moxlint.yaml")

	return cmd
}

func generateLintConfig(strict bool) string {
	var b strings.Builder
	b.WriteString("# moxlint configuration\n\n")

	b.WriteString("# Rules:\n")
	for _, r := range diagnostics.Rules() {
		fmt.Fprintf(&b, "#   %-24s %-8s %s\n", r.Code, r.Severity, r.Description)
	}
	b.WriteString("\n")

	b.WriteString("# disabled_rules:\n#   - todo\n\n")

	if strict {
		b.WriteString("severity_overrides:\n")
		for _, r := range diagnostics.Rules() {
			if sev, ok := strictOverrides[string(r.Code)]; ok {
				fmt.Fprintf(&b, "  %s: %s\n", r.Code, sev)
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString("# severity_overrides:\n#   hardcoded-path: error\n\n")
	}

	b.WriteString("exclude_paths:\n  - result\n")
	return b.String()
}
