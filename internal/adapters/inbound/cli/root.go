package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	v := newConfig()

	cmd := &cobra.Command{
		Use:   "moxlint",
		Short: "Language tooling for nix-mox Nushell scripts",
		Long: "moxlint lints, fixes and formats nix-mox Nushell scripts, answers completion, " +
			"hover and definition queries for the nix-mox library, and drives the workspace scripts. " +
			"It runs as a CLI, an LSP server and an MCP server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v); err != nil {
				return err
			}
			configureLogger(v)
			return nil
		},
	}
	configureRootFlags(cmd, v)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newLintCmd(v))
	cmd.AddCommand(newFixCmd(v))
	cmd.AddCommand(newFmtCmd(v))
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newHistoryCmd(v))
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newHoverCmd())
	cmd.AddCommand(newDefinitionCmd(v))
	cmd.AddCommand(newRunCmd(v))
	cmd.AddCommand(newTestCmd(v))
	cmd.AddCommand(newValidateCmd(v))
	cmd.AddCommand(newDocsCmd(v))
	cmd.AddCommand(newSetupCmd(v))
	cmd.AddCommand(newMetricsCmd(v))
	cmd.AddCommand(newLSPCmd(v))
	cmd.AddCommand(newMCPCmd(v))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. Errors are printed to stderr because stdout may be
// carrying LSP or MCP traffic.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
