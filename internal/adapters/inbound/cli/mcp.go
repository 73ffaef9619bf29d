package cli

import (
	mcpadapter "github.com/nix-mox/moxlint/internal/adapters/inbound/mcp"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/fs"
	"github.com/nix-mox/moxlint/internal/application"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newMCPCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the moxlint MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(v))
	return cmd
}

func newMCPServeCmd(v *viper.Viper) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start moxlint MCP server (stdio)",
		Long:  "Start the moxlint MCP server using stdio transport. This lets AI coding assistants lint, fix and run nix-mox scripts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			svc := newServices(cmd, settingsFrom(v), false)
			root, err := application.ResolveWorkspace(svc.git, projectPath)
			if err != nil {
				return err
			}
			s := mcpadapter.NewMoxlintMCPServer(root, mcpadapter.Services{
				Lint:     svc.lint,
				Fix:      svc.fix,
				Workflow: svc.workflow,
				Files:    fs.New(),
			}, version)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Workspace path (defaults to current working directory)")

	return cmd
}
