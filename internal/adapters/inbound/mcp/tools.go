package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
)

// registerTools registers all moxlint MCP tools on the given server.
func registerTools(s *server.MCPServer, root string, svc Services) {
	// 1. moxlint_lint_text
	s.AddTool(
		mcplib.NewTool("moxlint_lint_text",
			mcplib.WithDescription("Lint Nushell source text and return the findings as JSON. Lines and columns are zero-based byte offsets."),
			mcplib.WithString("text",
				mcplib.Required(),
				mcplib.Description("Full text of the Nushell script"),
			),
		),
		handleLintText(root, svc),
	)

	// 2. moxlint_lint_workspace
	s.AddTool(
		mcplib.NewTool("moxlint_lint_workspace",
			mcplib.WithDescription("Lint every .nu file in the workspace and return the report as JSON"),
			mcplib.WithBoolean("changed", mcplib.Description("Only lint modified and untracked scripts")),
			mcplib.WithString("paths", mcplib.Description("Comma-separated files or directories relative to the workspace root")),
		),
		handleLintWorkspace(root, svc),
	)

	// 3. moxlint_fix_text
	s.AddTool(
		mcplib.NewTool("moxlint_fix_text",
			mcplib.WithDescription("Apply every available quick fix to Nushell source text and return the fixed text"),
			mcplib.WithString("text", mcplib.Required(), mcplib.Description("Full text of the Nushell script")),
		),
		handleFixText(root, svc),
	)

	// 4. moxlint_format_text
	s.AddTool(
		mcplib.NewTool("moxlint_format_text",
			mcplib.WithDescription("Strip trailing whitespace and expand leading tabs in Nushell source text"),
			mcplib.WithString("text", mcplib.Required(), mcplib.Description("Full text of the Nushell script")),
		),
		handleFormatText(),
	)

	// 5. moxlint_fix_workspace
	s.AddTool(
		mcplib.NewTool("moxlint_fix_workspace",
			mcplib.WithDescription("Apply quick fixes to the workspace scripts and return the edits per file"),
			mcplib.WithBoolean("dry_run", mcplib.Description("Return the edits without writing files")),
		),
		handleFixWorkspace(root, svc),
	)

	// 6. moxlint_complete
	s.AddTool(
		mcplib.NewTool("moxlint_complete",
			mcplib.WithDescription("List nix-mox library functions with their snippets"),
			mcplib.WithString("prefix", mcplib.Description("Only return functions starting with prefix")),
		),
		handleComplete(),
	)

	// 7. moxlint_hover
	s.AddTool(
		mcplib.NewTool("moxlint_hover",
			mcplib.WithDescription("Return the documentation of a nix-mox library function"),
			mcplib.WithString("word", mcplib.Required(), mcplib.Description("Function name")),
		),
		handleHover(),
	)

	// 8. moxlint_definition
	s.AddTool(
		mcplib.NewTool("moxlint_definition",
			mcplib.WithDescription("Return the workspace file declaring a nix-mox library function"),
			mcplib.WithString("word", mcplib.Required(), mcplib.Description("Function name")),
		),
		handleDefinition(root, svc),
	)

	// 9. moxlint_validate_script
	s.AddTool(
		mcplib.NewTool("moxlint_validate_script",
			mcplib.WithDescription("Run the workspace security validation on a script"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("Script path relative to the workspace root")),
		),
		handleValidateScript(root, svc),
	)

	// 10. moxlint_run_script
	s.AddTool(
		mcplib.NewTool("moxlint_run_script",
			mcplib.WithDescription("Run a Nushell script from its own directory and return its output"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("Script path relative to the workspace root")),
		),
		handleRunScript(root, svc),
	)

	// 11. moxlint_test_script
	s.AddTool(
		mcplib.NewTool("moxlint_test_script",
			mcplib.WithDescription("Run a test file, or the whole test suite for any other script"),
			mcplib.WithString("path", mcplib.Required(), mcplib.Description("Script path relative to the workspace root")),
		),
		handleTestScript(root, svc),
	)

	// 12. moxlint_metrics
	s.AddTool(
		mcplib.NewTool("moxlint_metrics",
			mcplib.WithDescription("Return the performance metrics recorded by the nix-mox scripts"),
		),
		handleMetrics(svc),
	)
}

func handleLintText(root string, svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		findings := svc.Lint.LintText(root, text)
		if findings == nil {
			findings = []domain.Finding{}
		}
		return jsonResult(findings)
	}
}

func handleLintWorkspace(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		changed, _ := args["changed"].(bool)
		paths, _ := args["paths"].(string)

		opts := application.LintOptions{Changed: changed}
		for _, p := range splitAndTrim(paths) {
			opts.Paths = append(opts.Paths, resolve(root, p))
		}

		report, err := svc.Lint.LintWorkspace(ctx, root, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("lint failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleFixText(root string, svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		doc := domain.NewDocument(text)
		fixed, err := quickfix.Apply(doc, quickfix.FixAll(svc.Lint.LintText(root, text), doc))
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		return textResult(fixed), nil
	}
}

func handleFormatText() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		doc := domain.NewDocument(text)
		formatted, err := quickfix.Apply(doc, quickfix.Format(doc))
		if err != nil {
			return errorResult(fmt.Sprintf("format failed: %v", err)), nil
		}
		return textResult(formatted), nil
	}
}

func handleFixWorkspace(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		dryRun, _ := request.GetArguments()["dry_run"].(bool)

		files, err := svc.Fix.Fix(ctx, root, application.LintOptions{}, dryRun)
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		if files == nil {
			files = []domain.FileEdits{}
		}
		return jsonResult(files)
	}
}

func handleComplete() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		prefix, _ := request.GetArguments()["prefix"].(string)

		var out []knowledge.Candidate
		for _, c := range knowledge.Complete(knowledge.CompletionContext{Prefix: prefix}) {
			if strings.HasPrefix(c.Label, prefix) {
				out = append(out, c)
			}
		}
		if out == nil {
			out = []knowledge.Candidate{}
		}
		return jsonResult(out)
	}
}

// handleHover and handleDefinition answer a lookup miss with a plain "not
// found" result; only bad arguments are tool errors.
func handleHover() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		word, err := request.RequireString("word")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		doc, ok := knowledge.Hover(word)
		if !ok {
			return textResult(fmt.Sprintf("no documentation found for %q", word)), nil
		}
		return textResult(doc), nil
	}
}

func handleDefinition(root string, svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		word, err := request.RequireString("word")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		rel, ok := knowledge.Definition(word)
		if !ok {
			return textResult(fmt.Sprintf("no definition found for %q", word)), nil
		}
		if !svc.Files.Exists(filepath.Join(root, filepath.FromSlash(rel))) {
			return textResult(fmt.Sprintf("no definition found for %q: %s is not present in the workspace", word, rel)), nil
		}
		return textResult(rel), nil
	}
}

func handleValidateScript(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		report, err := svc.Workflow.ValidateScript(ctx, resolve(root, path))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(report)
	}
}

func handleRunScript(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		res, err := svc.Workflow.RunScript(ctx, resolve(root, path))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(res)
	}
}

func handleTestScript(root string, svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		res, err := svc.Workflow.TestScript(ctx, resolve(root, path))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(res)
	}
}

func handleMetrics(svc Services) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		report, err := svc.Workflow.Metrics()
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(report)
	}
}

// resolve joins a workspace-relative path onto root.
func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
