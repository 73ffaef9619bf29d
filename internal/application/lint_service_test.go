package application_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeScript(t, root, "scripts/clean.nu", "print \"ok\"\n")
	writeScript(t, root, "scripts/danger.nu", "sudo rm -rf /tmp/x\n")
	writeScript(t, root, "scripts/lib/todo.nu", "# TODO tidy up\necho hi   \n")
	writeScript(t, root, "README.md", "sudo rm -rf /\n")
	return root
}

func pathsOf(report *domain.LintReport) []string {
	var out []string
	for _, f := range report.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestLintService_LintWorkspace(t *testing.T) {
	root := seedWorkspace(t)
	svc := newLintService(&fakeGit{})

	report, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"scripts/clean.nu", "scripts/danger.nu", "scripts/lib/todo.nu"}, pathsOf(report))
	assert.Empty(t, report.Files[0].Findings)
	require.Len(t, report.Files[1].Findings, 1)
	assert.Equal(t, domain.CodeSecurity, report.Files[1].Findings[0].Code)
	assert.True(t, report.HasErrors())

	errs, warns, infos := report.Counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, warns)
	assert.Equal(t, 2, infos)
}

func TestLintService_AppliesWorkspaceConfig(t *testing.T) {
	root := seedWorkspace(t)
	writeScript(t, root, ".moxlint.yaml", "disabled_rules: [todo]\nseverity_overrides:\n  security: warning\nexclude_paths: [scripts/clean.nu]\n")
	svc := newLintService(&fakeGit{})

	report, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"scripts/danger.nu", "scripts/lib/todo.nu"}, pathsOf(report))
	assert.False(t, report.HasErrors())
	for _, f := range report.Files[1].Findings {
		assert.NotEqual(t, domain.CodeTodo, f.Code)
	}
}

func TestLintService_InvalidConfig(t *testing.T) {
	root := seedWorkspace(t)
	writeScript(t, root, ".moxlint.yaml", "disabled_rules: [nope]\n")

	_, err := newLintService(&fakeGit{}).LintWorkspace(context.Background(), root, application.LintOptions{})
	assert.ErrorContains(t, err, "loading config")
}

func TestLintService_ExplicitPaths(t *testing.T) {
	root := seedWorkspace(t)
	svc := newLintService(&fakeGit{})

	report, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{
		Paths: []string{filepath.Join(root, "scripts", "lib"), filepath.Join(root, "scripts", "danger.nu")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"scripts/danger.nu", "scripts/lib/todo.nu"}, pathsOf(report))
}

func TestLintService_RejectsNonScriptPath(t *testing.T) {
	root := seedWorkspace(t)

	_, err := newLintService(&fakeGit{}).LintWorkspace(context.Background(), root, application.LintOptions{
		Paths: []string{filepath.Join(root, "README.md")},
	})
	assert.ErrorIs(t, err, domain.ErrNotNushellScript)
}

func TestLintService_ChangedOnly(t *testing.T) {
	root := seedWorkspace(t)
	svc := newLintService(&fakeGit{root: root, changed: []string{"scripts/danger.nu"}})

	report, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{Changed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"scripts/danger.nu"}, pathsOf(report))
}

func TestLintService_ChangedOutsideRepo(t *testing.T) {
	root := seedWorkspace(t)

	_, err := newLintService(&fakeGit{}).LintWorkspace(context.Background(), root, application.LintOptions{Changed: true})
	assert.Error(t, err)
}

func TestLintService_RecordsHistory(t *testing.T) {
	root := seedWorkspace(t)
	svc := newLintService(&fakeGit{root: root, hash: "deadbeef"})

	_, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{Record: true})
	require.NoError(t, err)

	entries, err := svc.History(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Files)
	assert.Equal(t, 1, entries[0].Errors)
	assert.Equal(t, "deadbeef", entries[0].CommitHash)
}

func TestLintService_Deterministic(t *testing.T) {
	root := seedWorkspace(t)
	svc := newLintService(&fakeGit{})

	first, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{})
	require.NoError(t, err)
	second, err := svc.LintWorkspace(context.Background(), root, application.LintOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLintService_LintText(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, ".moxlint.yaml", "disabled_rules: [trailing-whitespace]\n")
	svc := newLintService(&fakeGit{})

	assert.Empty(t, svc.LintText(root, "echo hi   "))
	assert.Len(t, svc.LintText("", "echo hi   "), 1)
}

func TestLintService_LintTextIgnoresBrokenConfig(t *testing.T) {
	root := t.TempDir()
	writeScript(t, root, ".moxlint.yaml", "{{{")

	findings := newLintService(&fakeGit{}).LintText(root, "echo hi   ")
	assert.Len(t, findings, 1)
}
