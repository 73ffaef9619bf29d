// Package lsp exposes the linter, quick fixes and the nix-mox knowledge base
// as a Language Server Protocol server over stdio.
package lsp

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
)

const (
	serverName       = "moxlint"
	diagnosticSource = "nix-mox"
)

// Services are the application services the handlers call into.
type Services struct {
	Lint     *application.LintService
	Workflow *application.WorkflowService
	Files    domain.FileChecker
}

// Server holds the per-connection state of the language server.
type Server struct {
	svc      Services
	settings domain.Settings
	version  string
	docs     *documentStore
	handler  protocol.Handler

	// ctx bounds background workflow commands; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup

	mu   sync.RWMutex
	root string
}

// NewServer builds a Server. fallbackRoot is used until the client names a
// workspace in initialize.
func NewServer(svc Services, settings domain.Settings, version, fallbackRoot string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		svc:      svc,
		settings: settings,
		version:  version,
		docs:     newDocumentStore(),
		ctx:      ctx,
		cancel:   cancel,
		root:     fallbackRoot,
	}
	s.handler = protocol.Handler{
		Initialize:              s.Initialize,
		Initialized:             s.Initialized,
		Shutdown:                s.Shutdown,
		SetTrace:                s.SetTrace,
		TextDocumentDidOpen:     s.DidOpen,
		TextDocumentDidChange:   s.DidChange,
		TextDocumentDidSave:     s.DidSave,
		TextDocumentDidClose:    s.DidClose,
		TextDocumentCompletion:  s.Completion,
		TextDocumentHover:       s.Hover,
		TextDocumentDefinition:  s.Definition,
		TextDocumentFormatting:  s.Formatting,
		TextDocumentCodeAction:  s.CodeAction,
		WorkspaceExecuteCommand: s.ExecuteCommand,
	}
	return s
}

// Run serves the protocol on stdin/stdout until the client disconnects.
func (s *Server) Run() error {
	slog.Info("starting language server", "version", s.version)
	err := glspserver.NewServer(&s.handler, serverName, false).RunStdio()
	s.cancel()
	s.Wait()
	return err
}

// Wait blocks until every background command has reported its outcome.
func (s *Server) Wait() {
	s.jobs.Wait()
}

// background runs fn off the request loop with the server lifetime context.
func (s *Server) background(name string, fn func(context.Context)) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		slog.Debug("background command started", "command", name)
		fn(s.ctx)
	}()
}

// Root returns the workspace root currently in effect.
func (s *Server) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Server) Initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if root := workspaceFromParams(params); root != "" {
		s.mu.Lock()
		s.root = root
		s.mu.Unlock()
	}

	capabilities := s.handler.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
		Save:      true,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{Commands: commandNames()}

	version := s.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) Initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	if s.settings.ShowWelcome {
		showMessage(ctx, protocol.MessageTypeInfo,
			"nix-mox extension activated! Use the nix-mox commands to run, test and validate scripts.")
	}
	return nil
}

func (s *Server) Shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	s.cancel()
	return nil
}

func (s *Server) SetTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) DidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	s.docs.open(item.URI, item.Version, item.Text)
	s.publish(ctx, item.URI, domain.NewDocument(item.Text))
	return nil
}

func (s *Server) DidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, ok := s.docs.change(uri, params.TextDocument.Version, params.ContentChanges)
	if !ok {
		return nil
	}
	s.publish(ctx, uri, domain.NewDocument(text))
	return nil
}

func (s *Server) DidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if !s.settings.SecurityValidation {
		return nil
	}
	path := uriToPath(params.TextDocument.URI)
	if !domain.IsNushellScript(path) {
		return nil
	}
	s.background("validateOnSave", func(bg context.Context) {
		s.validate(bg, ctx, path)
	})
	return nil
}

func (s *Server) DidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.docs.close(uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// rootFor picks the workspace of the file behind uri, falling back to the
// session root for unsaved buffers.
func (s *Server) rootFor(uri protocol.DocumentUri) string {
	if path := uriToPath(uri); path != "" {
		if root, err := s.svc.Workflow.Workspace(filepath.Dir(path)); err == nil {
			return root
		}
	}
	return s.Root()
}

func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, doc domain.Document) {
	findings := s.svc.Lint.LintText(s.rootFor(uri), doc.Text())
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toDiagnostics(doc, findings),
	})
}

func toDiagnostics(doc domain.Document, findings []domain.Finding) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(findings))
	source := diagnosticSource
	for _, f := range findings {
		severity := toSeverity(f.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(doc, f.Range()),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(f.Code)},
			Source:   &source,
			Message:  f.Message,
		})
	}
	return out
}

func toSeverity(s domain.Severity) protocol.DiagnosticSeverity {
	switch s {
	case domain.SeverityError:
		return protocol.DiagnosticSeverityError
	case domain.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func showMessage(ctx *glsp.Context, kind protocol.MessageType, message string) {
	ctx.Notify(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{Type: kind, Message: message})
}

func workspaceFromParams(params *protocol.InitializeParams) string {
	if params == nil {
		return ""
	}
	if params.RootURI != nil {
		if path := uriToPath(*params.RootURI); path != "" {
			return path
		}
	}
	for _, folder := range params.WorkspaceFolders {
		if path := uriToPath(folder.URI); path != "" {
			return path
		}
	}
	if params.RootPath != nil && *params.RootPath != "" {
		return *params.RootPath
	}
	return ""
}
