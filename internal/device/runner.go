package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Runner abstracts command execution for testing.
type Runner interface {
	// Run executes name with args and returns captured stdout and stderr.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner is the production Runner.
type ExecRunner struct{}

// Run executes the command. A missing binary wraps errors.ErrToolUnavailable;
// a non-zero exit is returned as *CommandError.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //#nosec G204 -- tool paths come from configuration, args are built internally

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), nil
	}
	if ctx.Err() != nil {
		return stdout.Bytes(), stderr.Bytes(), ctx.Err()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s: %w", wcerrors.ErrToolUnavailable, name, err)
	}
	return stdout.Bytes(), stderr.Bytes(), &CommandError{
		Name:   name,
		Stderr: strings.TrimSpace(stderr.String()),
		Err:    err,
	}
}

// CommandError is a command that ran and failed.
// Arguments are deliberately not recorded since they may carry credentials.
type CommandError struct {
	Name   string
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s failed: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s failed: %v: %s", e.Name, e.Err, e.Stderr)
}

// Unwrap exposes both the sentinel and the underlying exec error.
func (e *CommandError) Unwrap() []error {
	return []error{wcerrors.ErrCommandFailed, e.Err}
}

// Diagnostic returns the captured stderr, or a placeholder when there was none.
func (e *CommandError) Diagnostic() string {
	if e.Stderr == "" {
		return "No error details"
	}
	return e.Stderr
}

// TimeoutRunner bounds every command it runs by Timeout.
// Use it for short informational commands only; a firmware erase may
// legitimately run for hours.
type TimeoutRunner struct {
	Runner  Runner
	Timeout time.Duration
}

// Run executes the command under a deadline. A non-positive Timeout
// runs the command unbounded.
func (t TimeoutRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if t.Timeout <= 0 {
		return t.Runner.Run(ctx, name, args...)
	}
	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()
	return t.Runner.Run(ctx, name, args...)
}
