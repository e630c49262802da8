package tui

import (
	"errors"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// ActionableError wraps an error with an actionable suggestion.
// Used to give users a clear next step when a command fails.
//
// Example usage:
//
//	err := NewActionableError("elevated privilege required", "Re-run the command with sudo.")
//	output.Error(err)
//	// Outputs: ✗ elevated privilege required
//	//          ▸ Try: Re-run the command with sudo.
type ActionableError struct {
	// Message is the primary error message.
	Message string

	// Suggestion provides actionable guidance for resolving the error.
	Suggestion string

	// Context provides optional additional information about the error.
	// When present, it is appended to the message in parentheses.
	Context string

	cause error
}

// NewActionableError creates a new ActionableError with message and suggestion.
func NewActionableError(msg, suggestion string) *ActionableError {
	return &ActionableError{
		Message:    msg,
		Suggestion: suggestion,
	}
}

// FromError converts err into an ActionableError using the user-facing
// message table in internal/errors. The full text of a wrapped error is kept
// as context. Errors with no registered action are returned unchanged, as
// are errors that are already actionable.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return err
	}

	msg, action := wcerrors.Actionable(err)
	if action == "" {
		return err
	}
	ae = NewActionableError(msg, action)
	if errors.Unwrap(err) != nil {
		ae.Context = err.Error()
	}
	ae.cause = err
	return ae
}

// Error implements the error interface.
// Returns the message with context if provided, e.g., "device not found (/dev/sdz)".
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Message + " (" + e.Context + ")"
	}
	return e.Message
}

// Unwrap returns the error the ActionableError was built from, if any.
func (e *ActionableError) Unwrap() error {
	return e.cause
}

// WithContext adds optional context to the error.
// Returns the same error for method chaining.
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}
