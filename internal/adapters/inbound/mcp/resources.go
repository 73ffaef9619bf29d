package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
)

// registerResources registers all moxlint MCP resources on the given server.
func registerResources(s *server.MCPServer, root string, svc Services) {
	// 1. moxlint://catalog - function reference
	s.AddResource(
		mcplib.NewResource(
			"moxlint://catalog",
			"Function Catalog",
			mcplib.WithResourceDescription("Reference of the nix-mox library functions"),
			mcplib.WithMIMEType("text/markdown"),
		),
		handleCatalogResource(),
	)

	// 2. moxlint://rules - lint rules
	s.AddResource(
		mcplib.NewResource(
			"moxlint://rules",
			"Lint Rules",
			mcplib.WithResourceDescription("Rules the linter applies, with severities"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource(),
	)

	// 3. moxlint://history - recorded lint runs
	s.AddResource(
		mcplib.NewResource(
			"moxlint://history",
			"Lint History",
			mcplib.WithResourceDescription("Summaries of recorded lint runs for the workspace"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(root, svc),
	)

	// 4. moxlint://metrics - performance metrics
	s.AddResource(
		mcplib.NewResource(
			"moxlint://metrics",
			"Performance Metrics",
			mcplib.WithResourceDescription("Metrics exposition file written by the nix-mox scripts"),
			mcplib.WithMIMEType("text/plain"),
		),
		handleMetricsResource(svc),
	)
}

func handleCatalogResource() server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "moxlint://catalog",
				MIMEType: "text/markdown",
				Text:     knowledge.RenderMarkdown(),
			},
		}, nil
	}
}

func handleRulesResource() server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonResource("moxlint://rules", diagnostics.Rules())
	}
}

func handleHistoryResource(root string, svc Services) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := svc.Lint.History(root)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		if entries == nil {
			entries = []domain.LintSummary{}
		}
		return jsonResource("moxlint://history", entries)
	}
}

func handleMetricsResource(svc Services) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		text := "No metrics data available"
		if report, err := svc.Workflow.Metrics(); err == nil {
			text = report.Raw
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "moxlint://metrics",
				MIMEType: "text/plain",
				Text:     text,
			},
		}, nil
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
