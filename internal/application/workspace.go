package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nix-mox/moxlint/internal/domain"
)

// ResolveWorkspace returns the git worktree root containing path, or the
// directory itself (the parent for files) when path is not inside a repo.
func ResolveWorkspace(git domain.GitInfo, path string) (string, error) {
	if path == "" {
		return "", domain.ErrNoWorkspace
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoWorkspace, err)
	}
	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	if git != nil {
		if root, err := git.RepoRoot(dir); err == nil {
			return root, nil
		}
	}
	return dir, nil
}

// relToRoot returns path relative to root in slash form, or path unchanged
// when it lies outside root.
func relToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func absPath(root, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.FromSlash(rel)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}
