package cli

import (
	"io"
	"os"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/config"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/gitinfo"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/history"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/metrics"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/runner"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/scanner"
	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// services bundles the application layer wired to the real adapters.
type services struct {
	settings domain.Settings
	git      *gitinfo.GitInfoAdapter
	lint     *application.LintService
	fix      *application.FixService
	workflow *application.WorkflowService
}

func newServices(cmd *cobra.Command, settings domain.Settings, interactive bool) *services {
	git := gitinfo.New()
	lint := application.NewLintService(scanner.New(), config.New(), git, history.New(), settings.LintParallel)

	run := runner.New(settings.NushellPath, settings.CommandTimeout,
		runner.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))

	var opts []application.WorkflowOption
	if interactive {
		opts = append(opts, application.WithInteractive())
	}

	return &services{
		settings: settings,
		git:      git,
		lint:     lint,
		fix:      application.NewFixService(lint),
		workflow: application.NewWorkflowService(run, git, metrics.New(), settings, opts...),
	}
}

// workspaceRoot resolves the workspace for the current directory.
func (s *services) workspaceRoot() (string, error) {
	return application.ResolveWorkspace(s.git, ".")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
