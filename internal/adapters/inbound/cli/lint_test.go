package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dangerous = "sudo rm -rf /var/cache\n"

func TestLint_PlainOutput(t *testing.T) {
	workspace(t, map[string]string{
		"scripts/clean.nu": dangerous,
		"ok.nu":            "print ok\n",
	})

	out, err := run(t, "lint")
	require.NoError(t, err)
	assert.Contains(t, out, "scripts/clean.nu:1:1: error: Dangerous command detected")
	assert.Contains(t, out, "1 errors, 0 warnings, 0 info")
}

func TestLint_JSON(t *testing.T) {
	workspace(t, map[string]string{"a.nu": "# FIXME: broken\n"})

	out, err := run(t, "lint", "--json")
	require.NoError(t, err)

	var report domain.LintReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 1)
	require.Len(t, report.Files[0].Findings, 1)
	assert.Equal(t, domain.CodeFixme, report.Files[0].Findings[0].Code)
	assert.Equal(t, domain.SeverityWarning, report.Files[0].Findings[0].Severity)
}

func TestLint_CIFailsOnErrors(t *testing.T) {
	workspace(t, map[string]string{"a.nu": dangerous})

	_, err := run(t, "lint", "--ci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error findings")
}

func TestLint_RejectsNonNushellPath(t *testing.T) {
	workspace(t, map[string]string{"README.md": "hi\n"})

	_, err := run(t, "lint", "README.md")
	assert.ErrorIs(t, err, domain.ErrNotNushellScript)
}

func TestLint_RecordAndHistory(t *testing.T) {
	workspace(t, map[string]string{"a.nu": dangerous})

	_, err := run(t, "lint", "--record")
	require.NoError(t, err)

	out, err := run(t, "history", "--json")
	require.NoError(t, err)
	var entries []domain.LintSummary
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Errors)
	assert.Equal(t, 1, entries[0].Files)
}

func TestFix_DryRunLeavesFilesAlone(t *testing.T) {
	dir := workspace(t, map[string]string{"a.nu": "print x  \n"})

	out, err := run(t, "fix", "--dry-run")
	require.NoError(t, err)

	var files []domain.FileEdits
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "a.nu", files[0].Path)
	assert.False(t, files[0].Written)

	data, err := os.ReadFile(filepath.Join(dir, "a.nu"))
	require.NoError(t, err)
	assert.Equal(t, "print x  \n", string(data))
}

func TestFix_WritesFiles(t *testing.T) {
	dir := workspace(t, map[string]string{"a.nu": "try {\n    risky\n}\nprint x  \n"})

	_, err := run(t, "fix")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.nu"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "} catch {|err|")
	assert.Contains(t, string(data), "print x\n")
}

func TestFmt_Check(t *testing.T) {
	dir := workspace(t, map[string]string{"a.nu": "\tprint x\n"})

	_, err := run(t, "fmt", "--check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 files need formatting")

	_, err = run(t, "fmt")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "a.nu"))
	require.NoError(t, err)
	assert.Equal(t, "    print x\n", string(data))

	_, err = run(t, "fmt", "--check")
	assert.NoError(t, err)
}

func TestRules_JSON(t *testing.T) {
	workspace(t, nil)
	out, err := run(t, "rules", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"code": "missing-error-handling"`)
}

func TestFmt_DiffDoesNotWrite(t *testing.T) {
	dir := workspace(t, map[string]string{"a.nu": "\tprint x\n"})

	out, err := run(t, "fmt", "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "--- a/a.nu")
	assert.Contains(t, out, "+    print x")

	data, err := os.ReadFile(filepath.Join(dir, "a.nu"))
	require.NoError(t, err)
	assert.Equal(t, "\tprint x\n", string(data))
}
