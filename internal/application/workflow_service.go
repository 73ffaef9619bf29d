package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	testSuiteCommand = "source scripts/testing/run-tests.nu; run []"
	securityModule   = "scripts/lib/security.nu"
	docsScript       = "scripts/analysis/generate-docs.nu"
	setupScript      = "scripts/setup/unified-setup.nu"
	metricsEnv       = "NIX_MOX_METRICS_ENABLED=true"
)

// WorkflowService drives the nix-mox scripts through the Nushell runtime.
type WorkflowService struct {
	runner      domain.ScriptRunner
	git         domain.GitInfo
	metrics     domain.MetricsSource
	settings    domain.Settings
	interactive bool
}

// WorkflowOption configures a WorkflowService.
type WorkflowOption func(*WorkflowService)

// WithInteractive streams subprocess output to the terminal as it runs.
func WithInteractive() WorkflowOption {
	return func(s *WorkflowService) { s.interactive = true }
}

func NewWorkflowService(
	runner domain.ScriptRunner,
	git domain.GitInfo,
	metrics domain.MetricsSource,
	settings domain.Settings,
	opts ...WorkflowOption,
) *WorkflowService {
	s := &WorkflowService{runner: runner, git: git, metrics: metrics, settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workspace resolves the workspace root for path.
func (s *WorkflowService) Workspace(path string) (string, error) {
	return ResolveWorkspace(s.git, path)
}

// RunScript runs a single script from its own directory.
func (s *WorkflowService) RunScript(ctx context.Context, path string) (*domain.RunResult, error) {
	abs, err := scriptPath(path)
	if err != nil {
		return nil, err
	}
	inv := domain.Invocation{
		Dir:         filepath.Dir(abs),
		Args:        []string{abs},
		Interactive: s.interactive,
	}
	if s.settings.EnableMetrics {
		inv.Env = append(inv.Env, metricsEnv)
	}
	return s.runner.Run(ctx, inv)
}

// TestScript runs a test file directly, or the whole suite for any other
// script.
func (s *WorkflowService) TestScript(ctx context.Context, path string) (*domain.RunResult, error) {
	abs, err := scriptPath(path)
	if err != nil {
		return nil, err
	}
	root, err := s.Workspace(abs)
	if err != nil {
		return nil, err
	}

	inv := domain.Invocation{Dir: root, Interactive: s.interactive}
	if strings.Contains(filepath.ToSlash(abs), "/tests/") {
		inv.Args = []string{abs}
	} else {
		inv.Args = []string{"-c", testSuiteCommand}
	}
	return s.runner.Run(ctx, inv)
}

// ValidateScript asks the workspace security module to vet path. A failed
// subprocess is an error; unparseable output is a completed validation.
func (s *WorkflowService) ValidateScript(ctx context.Context, path string) (*domain.SecurityReport, error) {
	abs, err := scriptPath(path)
	if err != nil {
		return nil, err
	}
	root, err := s.Workspace(abs)
	if err != nil {
		return nil, err
	}

	module := filepath.Join(root, filepath.FromSlash(securityModule))
	expr := fmt.Sprintf("use %s *; validate_script_security %s", nuString(module), nuString(abs))
	res, err := s.runner.Run(ctx, domain.Invocation{Dir: root, Args: []string{"-c", expr}})
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("security validation failed: exit code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	report := ParseSecurityOutput(res.Stdout)
	report.Script = abs
	slog.Info("security validation", "script", abs, "status", report.Status)
	return &report, nil
}

var nuEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// nuString renders s as a double-quoted Nushell string literal.
func nuString(s string) string {
	return `"` + nuEscaper.Replace(s) + `"`
}

// ParseSecurityOutput reads the validation JSON loosely: only is_safe and
// threats[].description matter, anything else is a completed validation.
func ParseSecurityOutput(stdout string) domain.SecurityReport {
	raw := strings.TrimSpace(stdout)
	report := domain.SecurityReport{Status: domain.ValidationCompleted, Raw: raw}
	if !gjson.Valid(raw) {
		return report
	}
	safe := gjson.Get(raw, "is_safe")
	if !safe.Exists() {
		return report
	}
	if safe.Bool() {
		report.Status = domain.ValidationPassed
		return report
	}
	report.Status = domain.ValidationFailed
	for _, t := range gjson.Get(raw, "threats.#.description").Array() {
		report.Threats = append(report.Threats, t.String())
	}
	return report
}

// GenerateDocs runs the workspace documentation generator.
func (s *WorkflowService) GenerateDocs(ctx context.Context, path string) (*domain.RunResult, error) {
	root, err := s.Workspace(path)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, domain.Invocation{Dir: root, Args: []string{docsScript}, Interactive: s.interactive})
}

// Setup runs the interactive setup wizard with the terminal attached.
func (s *WorkflowService) Setup(ctx context.Context, path string) (*domain.RunResult, error) {
	root, err := s.Workspace(path)
	if err != nil {
		return nil, err
	}
	return s.runner.Run(ctx, domain.Invocation{Dir: root, Args: []string{setupScript}, Interactive: true})
}

// Metrics reads and parses the metrics exposition file.
func (s *WorkflowService) Metrics() (*domain.MetricsReport, error) {
	raw, err := s.metrics.Read(s.settings.MetricsPath)
	if err != nil {
		return nil, err
	}
	return &domain.MetricsReport{
		Path:    s.settings.MetricsPath,
		Raw:     raw,
		Samples: domain.ParseMetrics(raw),
	}, nil
}

func scriptPath(path string) (string, error) {
	if !domain.IsNushellScript(path) {
		return "", fmt.Errorf("%s: %w", path, domain.ErrNotNushellScript)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}
