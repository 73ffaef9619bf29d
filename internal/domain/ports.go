package domain

import "context"

// ScriptScanner lists the Nushell scripts under a workspace.
type ScriptScanner interface {
	Scan(root string, cfg LintConfig) ([]string, error)
}

// ConfigLoader reads the workspace lint configuration.
type ConfigLoader interface {
	Load(workspaceRoot string) (LintConfig, error)
}

// ScriptRunner executes the external Nushell runtime.
type ScriptRunner interface {
	Run(ctx context.Context, inv Invocation) (*RunResult, error)
}

// MetricsSource reads the raw metrics exposition text.
type MetricsSource interface {
	Read(path string) (string, error)
}

// GitInfo answers questions about the git worktree holding a workspace.
type GitInfo interface {
	RepoRoot(path string) (string, error)
	ChangedScripts(root string) ([]string, error)
	CommitHash(root string) (string, error)
}

// LintHistory persists lint run summaries.
type LintHistory interface {
	Save(root string, entry LintSummary) error
	Load(root string) ([]LintSummary, error)
}

// FileChecker reports whether a path exists on disk.
type FileChecker interface {
	Exists(path string) bool
}
