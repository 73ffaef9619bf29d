package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
)

// Services are the application services the MCP tools call into.
type Services struct {
	Lint     *application.LintService
	Fix      *application.FixService
	Workflow *application.WorkflowService
	Files    domain.FileChecker
}

// NewMoxlintMCPServer creates a new MCP server with all moxlint tools and
// resources registered. root is the workspace the tools operate on.
func NewMoxlintMCPServer(root string, svc Services, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"moxlint",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, root, svc)
	registerResources(s, root, svc)

	return s
}
