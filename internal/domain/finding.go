package domain

import (
	"fmt"
	"strings"
)

// Severity ranks a Finding.
type Severity int

const (
	SeverityInfo Severity = iota + 1
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity accepts the names produced by Severity.String.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info", "information":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return 0, fmt.Errorf("unknown severity %q (valid: info, warning, error)", name)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Code identifies the rule that produced a Finding.
type Code string

const (
	CodeTrailingWhitespace   Code = "trailing-whitespace"
	CodeSecurity             Code = "security"
	CodeMissingErrorHandling Code = "missing-error-handling"
	CodeHardcodedPath        Code = "hardcoded-path"
	CodeTodo                 Code = "todo"
	CodeFixme                Code = "fixme"
)

// Finding is a single diagnostic on one line. Start and End are byte
// offsets into the line, End exclusive.
type Finding struct {
	Line     int      `json:"line"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Code     Code     `json:"code"`
}

// Range is a span on a single line, in byte offsets.
type Range struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

func (f Finding) Range() Range {
	return Range{Line: f.Line, Start: f.Start, End: f.End}
}

// Edit is a proposed text replacement. The core never applies edits to a
// host document itself.
type Edit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// FileFindings groups the findings of one file.
type FileFindings struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
	// Lines holds the scanned source for snippet rendering.
	Lines []string `json:"-"`
}

// LintReport is the result of linting a set of files.
type LintReport struct {
	Files []FileFindings `json:"files"`
}

// Counts returns the number of findings per severity.
func (r LintReport) Counts() (errors, warnings, infos int) {
	for _, f := range r.Files {
		for _, finding := range f.Findings {
			switch finding.Severity {
			case SeverityError:
				errors++
			case SeverityWarning:
				warnings++
			case SeverityInfo:
				infos++
			}
		}
	}
	return errors, warnings, infos
}

// HasErrors reports whether any finding is an Error.
func (r LintReport) HasErrors() bool {
	errs, _, _ := r.Counts()
	return errs > 0
}

// FileEdits groups the edits proposed for one file.
type FileEdits struct {
	Path  string `json:"path"`
	Edits []Edit `json:"edits"`
	// Written is set once the edits were applied to disk.
	Written bool `json:"written"`
}
