package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ValidCodes enumerates every rule code the diagnostics engine emits.
var ValidCodes = []Code{
	CodeTrailingWhitespace,
	CodeSecurity,
	CodeMissingErrorHandling,
	CodeHardcodedPath,
	CodeTodo,
	CodeFixme,
}

// LintConfig holds workspace-level configuration loaded from .moxlint.yaml.
type LintConfig struct {
	DisabledRules     []Code          `yaml:"disabled_rules"     json:"disabled_rules,omitempty"`
	SeverityOverrides map[Code]string `yaml:"severity_overrides" json:"severity_overrides,omitempty"`
	ExcludePaths      []string        `yaml:"exclude_paths"      json:"exclude_paths,omitempty"`
}

// DefaultLintConfig returns a zero-value config that changes nothing.
func DefaultLintConfig() LintConfig {
	return LintConfig{}
}

// IsDisabled reports whether the rule is switched off.
func (c LintConfig) IsDisabled(code Code) bool {
	for _, d := range c.DisabledRules {
		if d == code {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a slash-separated relative path matches one of
// the exclude patterns, either as a glob or as a directory prefix.
func (c LintConfig) IsExcluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, p := range c.ExcludePaths {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if p == "" {
			continue
		}
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
		if relPath == p || strings.HasPrefix(relPath, p+"/") {
			return true
		}
	}
	return false
}

// Apply drops disabled rules and rewrites overridden severities. The input
// slice is not modified.
func (c LintConfig) Apply(findings []Finding) []Finding {
	if len(c.DisabledRules) == 0 && len(c.SeverityOverrides) == 0 {
		return findings
	}
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if c.IsDisabled(f.Code) {
			continue
		}
		if name, ok := c.SeverityOverrides[f.Code]; ok {
			if sev, err := ParseSeverity(name); err == nil {
				f.Severity = sev
			}
		}
		out = append(out, f)
	}
	return out
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c LintConfig) Validate() error {
	disabled := make(map[Code]struct{}, len(c.DisabledRules))
	for _, code := range c.DisabledRules {
		if !isValidCode(code) {
			return fmt.Errorf("unknown rule %q in disabled_rules", code)
		}
		disabled[code] = struct{}{}
	}
	for code, sev := range c.SeverityOverrides {
		if !isValidCode(code) {
			return fmt.Errorf("unknown rule %q in severity_overrides", code)
		}
		if _, err := ParseSeverity(sev); err != nil {
			return fmt.Errorf("severity_overrides[%q]: %w", code, err)
		}
	}
	if len(disabled) >= len(ValidCodes) {
		return fmt.Errorf("cannot disable all rules (must have at least one active)")
	}
	return nil
}

func isValidCode(code Code) bool {
	for _, c := range ValidCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Settings is the process-wide configuration handed to every adapter at
// startup. Nothing reads ambient global state after it is built.
type Settings struct {
	NushellPath        string        `json:"nushell_path"`
	EnableMetrics      bool          `json:"enable_metrics"`
	ShowWelcome        bool          `json:"show_welcome"`
	SecurityValidation bool          `json:"security_validation"`
	MetricsPath        string        `json:"metrics_path"`
	CommandTimeout     time.Duration `json:"command_timeout"`
	LintParallel       int           `json:"lint_parallel"`
}

// DefaultSettings mirrors the defaults of the editor integration.
func DefaultSettings() Settings {
	return Settings{
		NushellPath:    "nu",
		EnableMetrics:  true,
		ShowWelcome:    true,
		MetricsPath:    "/tmp/nix-mox-metrics.prom",
		CommandTimeout: 5 * time.Minute,
		LintParallel:   4,
	}
}
