package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
)

const (
	cmdRunScript      = "nix-mox.runScript"
	cmdTestScript     = "nix-mox.testScript"
	cmdValidateScript = "nix-mox.validateScript"
	cmdGenerateDocs   = "nix-mox.generateDocs"
	cmdShowMetrics    = "nix-mox.showMetrics"
	cmdSetupWizard    = "nix-mox.setupWizard"
	cmdFormatDocument = "nix-mox.formatDocument"
)

func commandNames() []string {
	return []string{
		cmdRunScript, cmdTestScript, cmdValidateScript, cmdGenerateDocs,
		cmdShowMetrics, cmdSetupWizard, cmdFormatDocument,
	}
}

// ExecuteCommand runs one of the nix-mox workflow commands. Script commands
// take the document URI as their first argument and run in the background;
// their outcomes arrive later as window/showMessage notifications.
// formatDocument returns its edits instead.
func (s *Server) ExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	uri := argumentURI(params.Arguments)

	switch params.Command {
	case cmdRunScript:
		path, ok := s.scriptArgument(ctx, uri)
		if !ok {
			return nil, nil
		}
		s.background(params.Command, func(bg context.Context) {
			res, err := s.svc.Workflow.RunScript(bg, path)
			s.reportRun(ctx, res, err, "Script executed successfully", "Script execution failed")
		})

	case cmdTestScript:
		path, ok := s.scriptArgument(ctx, uri)
		if !ok {
			return nil, nil
		}
		s.background(params.Command, func(bg context.Context) {
			res, err := s.svc.Workflow.TestScript(bg, path)
			s.reportRun(ctx, res, err, "Tests passed successfully", "Tests failed")
		})

	case cmdValidateScript:
		path, ok := s.scriptArgument(ctx, uri)
		if !ok {
			return nil, nil
		}
		s.background(params.Command, func(bg context.Context) {
			s.validate(bg, ctx, path)
		})

	case cmdGenerateDocs:
		root := s.Root()
		s.background(params.Command, func(bg context.Context) {
			res, err := s.svc.Workflow.GenerateDocs(bg, root)
			s.reportRun(ctx, res, err, "Documentation generated successfully", "Documentation generation failed")
		})

	case cmdShowMetrics:
		report, err := s.svc.Workflow.Metrics()
		if err != nil {
			showMessage(ctx, protocol.MessageTypeWarning, "No metrics data available")
			return nil, nil
		}
		return report, nil

	case cmdSetupWizard:
		showMessage(ctx, protocol.MessageTypeInfo,
			fmt.Sprintf("Run `moxlint setup` in a terminal inside %s to start the setup wizard.", s.Root()))

	case cmdFormatDocument:
		doc, ok := s.docs.get(uri)
		if !ok {
			showMessage(ctx, protocol.MessageTypeError, "No active document to format")
			return nil, nil
		}
		return toTextEdits(doc, quickfix.Format(doc)), nil

	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	return nil, nil
}

func (s *Server) scriptArgument(ctx *glsp.Context, uri protocol.DocumentUri) (string, bool) {
	path := uriToPath(uri)
	if !domain.IsNushellScript(path) {
		showMessage(ctx, protocol.MessageTypeError, "Please open a Nushell script (.nu file)")
		return "", false
	}
	return path, true
}

func (s *Server) validate(bg context.Context, ctx *glsp.Context, path string) {
	report, err := s.svc.Workflow.ValidateScript(bg, path)
	if err != nil {
		showMessage(ctx, protocol.MessageTypeError, err.Error())
		return
	}
	kind := protocol.MessageTypeInfo
	if report.Status == domain.ValidationFailed {
		kind = protocol.MessageTypeWarning
	}
	showMessage(ctx, kind, report.Summary())
}

func (s *Server) reportRun(ctx *glsp.Context, res *domain.RunResult, err error, success, failure string) {
	switch {
	case err != nil:
		showMessage(ctx, protocol.MessageTypeError, failure+": "+err.Error())
	case !res.Success():
		showMessage(ctx, protocol.MessageTypeError, failure+": "+strings.TrimSpace(res.Stderr))
	default:
		showMessage(ctx, protocol.MessageTypeInfo, success)
	}
}

// argumentURI accepts either a bare URI string or an object carrying a
// "uri" field, which is what most clients send.
func argumentURI(args []any) protocol.DocumentUri {
	if len(args) == 0 {
		return ""
	}
	switch v := args[0].(type) {
	case string:
		return protocol.DocumentUri(v)
	case map[string]any:
		if uri, ok := v["uri"].(string); ok {
			return protocol.DocumentUri(uri)
		}
	}
	return ""
}
