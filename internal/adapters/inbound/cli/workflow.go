package cli

import (
	"errors"
	"fmt"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/tui"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.nu>",
		Short: "Run a Nushell script from its own directory",
		Long:  "Run a Nushell script with its directory as working directory. NIX_MOX_METRICS_ENABLED=true is set when metrics are enabled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), true)
			res, err := svc.workflow.RunScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return exitStatus(res, "script")
		},
	}
}

func newTestCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "test <script.nu>",
		Short: "Run a test file, or the whole suite for any other script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), true)
			res, err := svc.workflow.TestScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return exitStatus(res, "tests")
		},
	}
}

func newValidateCmd(v *viper.Viper) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <script.nu>",
		Short: "Run the workspace security validation on a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			report, err := svc.workflow.ValidateScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := renderJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			}

			if report.Status == domain.ValidationFailed {
				return errors.New("security validation reported threats")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the validation report as JSON")

	return cmd
}

func newDocsCmd(v *viper.Viper) *cobra.Command {
	var catalog bool

	cmd := &cobra.Command{
		Use:   "docs [path]",
		Short: "Generate workspace documentation",
		Long:  "Run scripts/analysis/generate-docs.nu in the workspace root. With --catalog, print the built-in function reference as Markdown instead.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalog {
				fmt.Fprint(cmd.OutOrStdout(), knowledge.RenderMarkdown())
				return nil
			}

			svc := newServices(cmd, settingsFrom(v), true)
			res, err := svc.workflow.GenerateDocs(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}
			return exitStatus(res, "documentation generator")
		},
	}

	cmd.Flags().BoolVar(&catalog, "catalog", false, "Print the function catalog as Markdown")

	return cmd
}

func newSetupCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "setup [path]",
		Short: "Run the interactive nix-mox setup wizard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), true)
			res, err := svc.workflow.Setup(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}
			return exitStatus(res, "setup wizard")
		},
	}
}

func newMetricsCmd(v *viper.Viper) *cobra.Command {
	var (
		jsonOutput bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show performance metrics recorded by the nix-mox scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			report, err := svc.workflow.Metrics()
			if err != nil {
				return err
			}

			switch {
			case jsonOutput:
				return renderJSON(cmd.OutOrStdout(), report)
			case raw:
				fmt.Fprint(cmd.OutOrStdout(), report.Raw)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderMetrics(*report))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output metrics as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the exposition file verbatim")

	return cmd
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func exitStatus(res *domain.RunResult, what string) error {
	if res.Success() {
		return nil
	}
	return fmt.Errorf("%s exited with code %d", what, res.ExitCode)
}
