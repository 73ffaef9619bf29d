package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nix-mox/moxlint/internal/domain"
)

// NuRunner implements domain.ScriptRunner using os/exec.
type NuRunner struct {
	binary  string
	timeout time.Duration
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// Option configures a NuRunner.
type Option func(*NuRunner)

// WithStdio attaches the streams used by interactive invocations.
func WithStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(r *NuRunner) {
		r.stdin = in
		r.stdout = out
		r.stderr = errOut
	}
}

// New constructs a NuRunner calling binary (usually "nu"). A zero timeout
// means no limit.
func New(binary string, timeout time.Duration, opts ...Option) *NuRunner {
	if binary == "" {
		binary = "nu"
	}
	r := &NuRunner{
		binary:  binary,
		timeout: timeout,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the runtime once. A non-zero exit is reported through
// RunResult.ExitCode; err is only set when the process could not run.
func (r *NuRunner) Run(ctx context.Context, inv domain.Invocation) (*domain.RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	if inv.Interactive {
		cmd.Stdin = r.stdin
		cmd.Stdout = io.MultiWriter(r.stdout, &stdout)
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	result := &domain.RunResult{Command: describe(r.binary, inv)}
	slog.Debug("running nushell", "command", result.Command, "dir", inv.Dir)

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			slog.Debug("nushell exited", "command", result.Command, "code", result.ExitCode)
			return result, nil
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("running %s: %w", result.Command, ctx.Err())
		}
		return result, fmt.Errorf("running %s: %w", result.Command, err)
	}
	return result, nil
}

func describe(binary string, inv domain.Invocation) string {
	parts := append([]string{binary}, inv.Args...)
	for i, p := range parts {
		if strings.ContainsAny(p, " \t\"") {
			parts[i] = fmt.Sprintf("%q", p)
		}
	}
	return strings.Join(parts, " ")
}
