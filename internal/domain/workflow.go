package domain

import "time"

// Invocation describes one call of the Nushell runtime.
type Invocation struct {
	Dir         string   `json:"dir"`
	Args        []string `json:"args"`
	Env         []string `json:"env,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
}

// RunResult is the outcome of a finished subprocess. A non-zero ExitCode is
// not an error on its own; the caller decides what it means.
type RunResult struct {
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

func (r RunResult) Success() bool { return r.ExitCode == 0 }

const (
	ValidationPassed    = "passed"
	ValidationFailed    = "failed"
	ValidationCompleted = "completed"
)

// SecurityReport is the loosely parsed output of the security validation
// script.
type SecurityReport struct {
	Script  string   `json:"script"`
	Status  string   `json:"status"`
	Threats []string `json:"threats,omitempty"`
	Raw     string   `json:"raw,omitempty"`
}

// Summary renders the report the way the editor notification did.
func (r SecurityReport) Summary() string {
	switch r.Status {
	case ValidationPassed:
		return "Script passed security validation"
	case ValidationFailed:
		msg := "Security issues found"
		if len(r.Threats) > 0 {
			msg += ": "
			for i, t := range r.Threats {
				if i > 0 {
					msg += ", "
				}
				msg += t
			}
		}
		return msg
	default:
		return "Security validation completed"
	}
}

// LintSummary is one recorded lint run.
type LintSummary struct {
	Timestamp  time.Time `json:"timestamp"`
	CommitHash string    `json:"commit_hash,omitempty"`
	Files      int       `json:"files"`
	Errors     int       `json:"errors"`
	Warnings   int       `json:"warnings"`
	Infos      int       `json:"infos"`
}
