package quickfix_test

import (
	"strings"
	"testing"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/nix-mox/moxlint/internal/domain/diagnostics"
	"github.com/nix-mox/moxlint/internal/domain/quickfix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingFor(t *testing.T, doc domain.Document, code domain.Code) domain.Finding {
	t.Helper()
	for _, f := range diagnostics.ScanDocument(doc) {
		if f.Code == code {
			return f
		}
	}
	t.Fatalf("no %s finding", code)
	return domain.Finding{}
}

func TestSynthesize_TrailingWhitespace(t *testing.T) {
	doc := domain.NewDocument("echo hi   ")
	f := findingFor(t, doc, domain.CodeTrailingWhitespace)

	edit, ok := quickfix.Synthesize(f, doc)
	require.True(t, ok)
	assert.Equal(t, domain.Range{Line: 0, Start: 7, End: 10}, edit.Range)
	assert.Empty(t, edit.NewText)

	out, err := quickfix.Apply(doc, []domain.Edit{edit})
	require.NoError(t, err)
	assert.Equal(t, "echo hi", out)
}

func TestSynthesize_MissingErrorHandling(t *testing.T) {
	doc := domain.NewDocument("try {\n  risky()\n}")
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	edit, ok := quickfix.Synthesize(f, doc)
	require.True(t, ok)
	assert.Equal(t, domain.Range{Line: 2, Start: 1, End: 1}, edit.Range)
	assert.True(t, strings.HasPrefix(edit.NewText, " catch {|err|"))

	out, err := quickfix.Apply(doc, []domain.Edit{edit})
	require.NoError(t, err)
	assert.Equal(t, "try {\n  risky()\n} catch {|err|\n    print $\"Error: ($err.msg)\"\n}", out)

	assert.Empty(t, diagnostics.Scan(out), "fixed document has no findings left")
}

func TestSynthesize_MissingErrorHandlingIsDeterministic(t *testing.T) {
	doc := domain.NewDocument("try {\n  risky()\n}")
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	first, _ := quickfix.Synthesize(f, doc)
	second, _ := quickfix.Synthesize(f, doc)
	assert.Equal(t, first, second)
}

func TestSynthesize_NestedBlocks(t *testing.T) {
	src := strings.Join([]string{
		"def main [] {",
		"    try {",
		"        if true {",
		"            print \"}\" # }",
		"        }",
		"    }",
		"    print done",
		"}",
	}, "\n")
	doc := domain.NewDocument(src)
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	edit, ok := quickfix.Synthesize(f, doc)
	require.True(t, ok)
	assert.Equal(t, domain.Range{Line: 5, Start: 5, End: 5}, edit.Range)
	assert.Equal(t, " catch {|err|\n        print $\"Error: ($err.msg)\"\n    }", edit.NewText)
}

func TestSynthesize_HashInsideWordIsNotComment(t *testing.T) {
	src := strings.Join([]string{
		"try {",
		"  ls foo#bar {",
		"  }",
		"}",
	}, "\n")
	doc := domain.NewDocument(src)
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	edit, ok := quickfix.Synthesize(f, doc)
	require.True(t, ok)
	assert.Equal(t, domain.Range{Line: 3, Start: 1, End: 1}, edit.Range)
}

func TestSynthesize_SingleLineTry(t *testing.T) {
	doc := domain.NewDocument("try { risky } | ignore")
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	edit, ok := quickfix.Synthesize(f, doc)
	require.True(t, ok)
	assert.Equal(t, domain.Range{Line: 0, Start: 13, End: 13}, edit.Range)
}

func TestSynthesize_UnbalancedIsNoOp(t *testing.T) {
	doc := domain.NewDocument("try {\n  risky()\n")
	f := findingFor(t, doc, domain.CodeMissingErrorHandling)

	_, ok := quickfix.Synthesize(f, doc)
	assert.False(t, ok)
}

func TestSynthesize_InformationalCodes(t *testing.T) {
	doc := domain.NewDocument("sudo rm -rf /home/x # TODO # FIXME")
	for _, f := range diagnostics.ScanDocument(doc) {
		_, ok := quickfix.Synthesize(f, doc)
		assert.False(t, ok, "code %s has no fix", f.Code)
	}
}

func TestTitle(t *testing.T) {
	title, ok := quickfix.Title(domain.CodeTrailingWhitespace)
	require.True(t, ok)
	assert.Equal(t, "Remove trailing whitespace", title)

	title, ok = quickfix.Title(domain.CodeMissingErrorHandling)
	require.True(t, ok)
	assert.Equal(t, "Add error handling", title)

	_, ok = quickfix.Title(domain.CodeSecurity)
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	doc := domain.NewDocument("def f [] {\n\tlet x = 1  \n\t\t\n  ok \n}")
	edits := quickfix.Format(doc)
	require.Len(t, edits, 3)

	out, err := quickfix.Apply(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, "def f [] {\n    let x = 1\n\n  ok\n}", out)
}

func TestFormat_CleanDocument(t *testing.T) {
	assert.Empty(t, quickfix.Format(domain.NewDocument("def f [] {\n    1\n}\n")))
}

func TestFixAll_SkipsOverlaps(t *testing.T) {
	doc := domain.NewDocument("try {\n  risky()\n}  ")
	edits := quickfix.FixAll(diagnostics.ScanDocument(doc), doc)
	require.Len(t, edits, 1)

	out, err := quickfix.Apply(doc, edits)
	require.NoError(t, err)
	assert.Contains(t, out, "} catch {|err|")
}

func TestApply_RejectsOverlaps(t *testing.T) {
	doc := domain.NewDocument("abcdef")
	_, err := quickfix.Apply(doc, []domain.Edit{
		{Range: domain.Range{Line: 0, Start: 0, End: 3}, NewText: "x"},
		{Range: domain.Range{Line: 0, Start: 2, End: 4}, NewText: "y"},
	})
	assert.Error(t, err)
}

func TestApply_KeepsCRLF(t *testing.T) {
	doc := domain.NewDocument("a \r\nb")
	out, err := quickfix.Apply(doc, quickfix.Format(doc))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", out)
}

func TestApply_CatchInCRLFDocument(t *testing.T) {
	doc := domain.NewDocument("try {\r\n  risky()\r\n}\r\necho done\r\n")

	out, err := quickfix.Apply(doc, quickfix.FixAll(diagnostics.ScanDocument(doc), doc))
	require.NoError(t, err)
	assert.Equal(t, "try {\r\n  risky()\r\n} catch {|err|\r\n    print $\"Error: ($err.msg)\"\r\n}\r\necho done\r\n", out)
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestNormalizeNewlines(t *testing.T) {
	crlf := domain.NewDocument("a\r\nb")
	lf := domain.NewDocument("a\nb")

	assert.Equal(t, "x\r\ny\r\nz", quickfix.NormalizeNewlines(crlf, "x\ny\r\nz"))
	assert.Equal(t, "x\ny", quickfix.NormalizeNewlines(lf, "x\ny"))
	assert.Equal(t, "x", quickfix.NormalizeNewlines(crlf, "x"))
}
