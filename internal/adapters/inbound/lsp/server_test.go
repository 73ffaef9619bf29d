package lsp_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nix-mox/moxlint/internal/adapters/inbound/lsp"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/config"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/fs"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/gitinfo"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/history"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/metrics"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/scanner"
	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
)

type notification struct {
	method string
	params any
}

// recorder captures every notification the server sends. Background
// commands notify from their own goroutines.
type recorder struct {
	mu   sync.Mutex
	sent []notification
}

func (r *recorder) ctx() *glsp.Context {
	return &glsp.Context{Notify: func(method string, params any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.sent = append(r.sent, notification{method: method, params: params})
	}}
}

func (r *recorder) snapshot() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.sent...)
}

func (r *recorder) diagnostics(t *testing.T) protocol.PublishDiagnosticsParams {
	t.Helper()
	sent := r.snapshot()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].method == protocol.ServerTextDocumentPublishDiagnostics {
			return sent[i].params.(protocol.PublishDiagnosticsParams)
		}
	}
	t.Fatal("no diagnostics published")
	return protocol.PublishDiagnosticsParams{}
}

func (r *recorder) messages() []protocol.ShowMessageParams {
	var out []protocol.ShowMessageParams
	for _, n := range r.snapshot() {
		if n.method == protocol.ServerWindowShowMessage {
			out = append(out, n.params.(protocol.ShowMessageParams))
		}
	}
	return out
}

// fakeRunner returns result for every invocation. When block is set, Run
// waits for it to close or for ctx to end.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []domain.Invocation
	result domain.RunResult
	block  chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, inv domain.Invocation) (*domain.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	res := f.result
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &res, nil
}

func (f *fakeRunner) invocations() []domain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Invocation(nil), f.calls...)
}

type fixture struct {
	root   string
	runner *fakeRunner
	server *lsp.Server
	rec    *recorder
}

func newFixture(t *testing.T, settings domain.Settings) *fixture {
	t.Helper()
	root := t.TempDir()
	git := gitinfo.New()
	run := &fakeRunner{}
	lint := application.NewLintService(scanner.New(), config.New(), git, history.New(), 1)
	svc := lsp.Services{
		Lint:     lint,
		Workflow: application.NewWorkflowService(run, git, metrics.New(), settings),
		Files:    fs.New(),
	}
	return &fixture{
		root:   root,
		runner: run,
		server: lsp.NewServer(svc, settings, "test", root),
		rec:    &recorder{},
	}
}

func (f *fixture) uri(rel string) protocol.DocumentUri {
	return protocol.DocumentUri("file://" + filepath.ToSlash(filepath.Join(f.root, rel)))
}

// write puts rel on disk and returns its URI.
func (f *fixture) write(t *testing.T, rel, text string) protocol.DocumentUri {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return f.uri(rel)
}

func (f *fixture) open(t *testing.T, rel, text string) protocol.DocumentUri {
	t.Helper()
	uri := f.uri(rel)
	require.NoError(t, f.server.DidOpen(f.rec.ctx(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "nushell", Version: 1, Text: text},
	}))
	return uri
}

func quietSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.ShowWelcome = false
	return s
}

func TestInitialize_TakesRootFromClient(t *testing.T) {
	f := newFixture(t, quietSettings())
	other := t.TempDir()
	rootURI := protocol.DocumentUri("file://" + filepath.ToSlash(other))

	result, err := f.server.Initialize(f.rec.ctx(), &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	res, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "moxlint", res.ServerInfo.Name)
	require.NotNil(t, res.Capabilities.ExecuteCommandProvider)
	assert.Contains(t, res.Capabilities.ExecuteCommandProvider.Commands, "nix-mox.runScript")
	assert.Equal(t, other, f.server.Root())
}

func TestInitialized_Welcome(t *testing.T) {
	f := newFixture(t, domain.DefaultSettings())
	require.NoError(t, f.server.Initialized(f.rec.ctx(), &protocol.InitializedParams{}))

	msgs := f.rec.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Message, "nix-mox extension activated")

	quiet := newFixture(t, quietSettings())
	require.NoError(t, quiet.server.Initialized(quiet.rec.ctx(), &protocol.InitializedParams{}))
	assert.Empty(t, quiet.rec.messages())
}

func TestDidOpen_PublishesDiagnosticsInUTF16(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "let s = \"é😀\"  \n")

	diags := f.rec.diagnostics(t)
	assert.Equal(t, uri, diags.URI)
	require.Len(t, diags.Diagnostics, 1)
	d := diags.Diagnostics[0]
	assert.Equal(t, uint32(13), d.Range.Start.Character)
	assert.Equal(t, uint32(15), d.Range.End.Character)
	assert.Equal(t, "trailing-whitespace", d.Code.Value)
	assert.Equal(t, "nix-mox", *d.Source)
	assert.Equal(t, protocol.DiagnosticSeverityInformation, *d.Severity)
}

func TestDidChange_IncrementalEditRescans(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "print ok\n")
	assert.Empty(t, f.rec.diagnostics(t).Diagnostics)

	require.NoError(t, f.server.DidChange(f.rec.ctx(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 0},
					End:   protocol.Position{Line: 0, Character: 8},
				},
				Text: "sudo rm -rf /tmp/x",
			},
		},
	}))

	diags := f.rec.diagnostics(t).Diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, "security", diags[0].Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
}

func TestDidChange_WholeDocument(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "print ok\n")

	require.NoError(t, f.server.DidChange(f.rec.ctx(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "# TODO: later\n"}},
	}))

	diags := f.rec.diagnostics(t).Diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, "todo", diags[0].Code.Value)
}

func TestDidClose_ClearsDiagnostics(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "x  \n")
	require.NotEmpty(t, f.rec.diagnostics(t).Diagnostics)

	require.NoError(t, f.server.DidClose(f.rec.ctx(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Empty(t, f.rec.diagnostics(t).Diagnostics)
}

func TestDidOpen_HonoursWorkspaceConfig(t *testing.T) {
	f := newFixture(t, quietSettings())
	require.NoError(t, os.WriteFile(filepath.Join(f.root, ".moxlint.yaml"), []byte("disabled_rules: [todo]\n"), 0644))

	f.open(t, "a.nu", "# TODO: later\n")
	assert.Empty(t, f.rec.diagnostics(t).Diagnostics)
}

func TestCompletion_ReturnsCatalogSnippets(t *testing.T) {
	f := newFixture(t, quietSettings())
	result, err := f.server.Completion(f.rec.ctx(), &protocol.CompletionParams{})
	require.NoError(t, err)

	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)
	require.Len(t, items, 22)
	assert.Equal(t, "detect_platform", items[0].Label)
	assert.Equal(t, protocol.InsertTextFormatSnippet, *items[0].InsertTextFormat)
	assert.Equal(t, protocol.CompletionItemKindFunction, *items[0].Kind)
}

func TestHover(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "let p = (detect_platform)\nfoo\n")

	hover, err := f.server.Hover(f.rec.ctx(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 0, Character: 12},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Contains(t, content.Value, "Detects the current platform")
	assert.Equal(t, uint32(9), hover.Range.Start.Character)
	assert.Equal(t, uint32(24), hover.Range.End.Character)

	miss, err := f.server.Hover(f.rec.ctx(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 1, Character: 1},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestDefinition_OnlyWhenFileExists(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "log_info \"hi\"\ndetect_platform\n")
	params := func(line uint32) *protocol.DefinitionParams {
		return &protocol.DefinitionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: uri},
				Position:     protocol.Position{Line: line, Character: 2},
			},
		}
	}

	target := filepath.Join(f.root, "scripts", "lib", "logging.nu")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("export def log_info [] {}\n"), 0644))

	result, err := f.server.Definition(f.rec.ctx(), params(0))
	require.NoError(t, err)
	loc, ok := result.(protocol.Location)
	require.True(t, ok)
	assert.Contains(t, string(loc.URI), "scripts/lib/logging.nu")
	assert.Equal(t, protocol.Range{}, loc.Range)

	missing, err := f.server.Definition(f.rec.ctx(), params(1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFormatting(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "\tprint x  \nok\n")

	edits, err := f.server.Formatting(f.rec.ctx(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "    print x", edits[0].NewText)
	assert.Equal(t, uint32(0), edits[0].Range.Start.Line)
}

func TestCodeAction_AddsCatch(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "try {\n    risky\n}\n")
	diags := f.rec.diagnostics(t).Diagnostics
	require.Len(t, diags, 1)

	result, err := f.server.CodeAction(f.rec.ctx(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Range:        diags[0].Range,
		Context:      protocol.CodeActionContext{Diagnostics: diags},
	})
	require.NoError(t, err)

	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok)
	require.Len(t, actions, 1)
	assert.Equal(t, "Add error handling", actions[0].Title)
	edits := actions[0].Edit.Changes[uri]
	require.Len(t, edits, 1)
	assert.Equal(t, uint32(2), edits[0].Range.Start.Line)
	assert.Equal(t, uint32(1), edits[0].Range.Start.Character)
	assert.Contains(t, edits[0].NewText, "catch {|err|")
}

func TestCodeAction_IgnoresForeignDiagnostics(t *testing.T) {
	f := newFixture(t, quietSettings())
	uri := f.open(t, "a.nu", "x  \n")
	other := "shellcheck"

	result, err := f.server.CodeAction(f.rec.ctx(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Context: protocol.CodeActionContext{Diagnostics: []protocol.Diagnostic{{
			Source: &other,
			Code:   &protocol.IntegerOrString{Value: "trailing-whitespace"},
		}}},
	})
	require.NoError(t, err)
	assert.Empty(t, result)
}
