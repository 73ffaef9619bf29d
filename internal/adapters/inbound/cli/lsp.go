package cli

import (
	lspadapter "github.com/nix-mox/moxlint/internal/adapters/inbound/lsp"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/fs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLSPCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the moxlint language server (stdio)",
		Long: "Start the Language Server Protocol server on stdin/stdout. It publishes diagnostics, " +
			"offers quick fixes, formatting, completion, hover and definition for nix-mox scripts, " +
			"and runs the nix-mox.* workspace commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := svc.workspaceRoot()
			if err != nil {
				return err
			}

			s := lspadapter.NewServer(lspadapter.Services{
				Lint:     svc.lint,
				Workflow: svc.workflow,
				Files:    fs.New(),
			}, svc.settings, version, root)
			return s.Run()
		},
	}
}
