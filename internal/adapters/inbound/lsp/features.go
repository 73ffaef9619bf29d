package lsp

import (
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/knowledge"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
)

func (s *Server) Completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	kind := protocol.CompletionItemKindFunction
	format := protocol.InsertTextFormatSnippet
	candidates := knowledge.Complete(knowledge.CompletionContext{})

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		snippet := c.Snippet
		items = append(items, protocol.CompletionItem{
			Label: c.Label,
			Kind:  &kind,
			Documentation: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: c.Documentation,
			},
			InsertText:       &snippet,
			InsertTextFormat: &format,
		})
	}
	return items, nil
}

func (s *Server) Hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word, start, end := wordAt(doc, params.Position)
	text, ok := knowledge.Hover(word)
	if !ok {
		return nil, nil
	}
	rng := toProtocolRange(doc, domain.Range{Line: int(params.Position.Line), Start: start, End: end})
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "**" + word + "**\n\n" + text,
		},
		Range: &rng,
	}, nil
}

func (s *Server) Definition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word, _, _ := wordAt(doc, params.Position)
	rel, ok := knowledge.Definition(word)
	if !ok {
		return nil, nil
	}
	path := filepath.Join(s.rootFor(params.TextDocument.URI), filepath.FromSlash(rel))
	if !s.svc.Files.Exists(path) {
		return nil, nil
	}
	return protocol.Location{URI: pathToURI(path), Range: protocol.Range{}}, nil
}

func (s *Server) Formatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return toTextEdits(doc, quickfix.Format(doc)), nil
}

// CodeAction offers a quick fix for every requested diagnostic that still
// matches a finding in the current text.
func (s *Server) CodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	doc, ok := s.docs.get(uri)
	if !ok {
		return nil, nil
	}
	findings := s.svc.Lint.LintText(s.rootFor(uri), doc.Text())

	kind := protocol.CodeActionKindQuickFix
	var actions []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		code, ok := diagnosticCode(diag)
		if !ok {
			continue
		}
		finding, ok := findingFor(findings, code, int(diag.Range.Start.Line))
		if !ok {
			continue
		}
		title, ok := quickfix.Title(code)
		if !ok {
			continue
		}
		edit, ok := quickfix.Synthesize(finding, doc)
		if !ok {
			continue
		}
		actions = append(actions, protocol.CodeAction{
			Title:       title,
			Kind:        &kind,
			Diagnostics: []protocol.Diagnostic{diag},
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentUri][]protocol.TextEdit{
					uri: toTextEdits(doc, []domain.Edit{edit}),
				},
			},
		})
	}
	return actions, nil
}

func diagnosticCode(diag protocol.Diagnostic) (domain.Code, bool) {
	if diag.Source != nil && *diag.Source != diagnosticSource {
		return "", false
	}
	if diag.Code == nil {
		return "", false
	}
	code, ok := diag.Code.Value.(string)
	return domain.Code(code), ok
}

func findingFor(findings []domain.Finding, code domain.Code, line int) (domain.Finding, bool) {
	for _, f := range findings {
		if f.Code == code && f.Line == line {
			return f, true
		}
	}
	return domain.Finding{}, false
}

func wordAt(doc domain.Document, pos protocol.Position) (string, int, int) {
	line := doc.Line(int(pos.Line))
	return knowledge.WordAt(line, byteColumn(line, pos.Character))
}

// toTextEdits converts domain edits to LSP edits. Multi-line replacements
// keep their text; only the anchoring range is translated.
func toTextEdits(doc domain.Document, edits []domain.Edit) []protocol.TextEdit {
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, protocol.TextEdit{
			Range:   toProtocolRange(doc, e.Range),
			NewText: quickfix.NormalizeNewlines(doc, e.NewText),
		})
	}
	return out
}
