package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/config"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/history"
	"github.com/nix-mox/moxlint/internal/adapters/outbound/scanner"
	"github.com/nix-mox/moxlint/internal/application"
	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/stretchr/testify/require"
)

var errNotRepo = errors.New("not a git repository")

// fakeGit answers from fixed values; an empty root means "not a repo".
type fakeGit struct {
	root    string
	changed []string
	hash    string
}

func (g *fakeGit) RepoRoot(string) (string, error) {
	if g.root == "" {
		return "", errNotRepo
	}
	return g.root, nil
}

func (g *fakeGit) ChangedScripts(string) ([]string, error) {
	if g.root == "" {
		return nil, errNotRepo
	}
	return g.changed, nil
}

func (g *fakeGit) CommitHash(string) (string, error) {
	if g.hash == "" {
		return "", errNotRepo
	}
	return g.hash, nil
}

// fakeRunner records invocations and replies with a canned result.
type fakeRunner struct {
	calls  []domain.Invocation
	result domain.RunResult
	err    error
}

func (r *fakeRunner) Run(_ context.Context, inv domain.Invocation) (*domain.RunResult, error) {
	r.calls = append(r.calls, inv)
	if r.err != nil {
		return nil, r.err
	}
	res := r.result
	return &res, nil
}

func (r *fakeRunner) last(t *testing.T) domain.Invocation {
	t.Helper()
	require.NotEmpty(t, r.calls)
	return r.calls[len(r.calls)-1]
}

type fakeMetrics struct {
	raw string
	err error
}

func (m fakeMetrics) Read(string) (string, error) { return m.raw, m.err }

func writeScript(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readScript(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func newLintService(git *fakeGit) *application.LintService {
	return application.NewLintService(scanner.New(), config.New(), git, history.New(), 4)
}
