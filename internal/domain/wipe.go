package domain

import (
	"fmt"
	"strings"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// WipeMethod selects how a device is sanitized.
type WipeMethod string

const (
	// MethodOverwrite is a host-side multi-pass overwrite (NIST 800-88 Clear).
	MethodOverwrite WipeMethod = "overwrite"

	// MethodPurge is an ATA firmware secure erase (NIST 800-88 Purge).
	MethodPurge WipeMethod = "purge"
)

// ValidWipeMethods returns every accepted method in display order.
func ValidWipeMethods() []WipeMethod {
	return []WipeMethod{MethodOverwrite, MethodPurge}
}

// ParseWipeMethod converts user input to a WipeMethod.
func ParseWipeMethod(s string) (WipeMethod, error) {
	switch WipeMethod(strings.ToLower(strings.TrimSpace(s))) {
	case MethodOverwrite:
		return MethodOverwrite, nil
	case MethodPurge:
		return MethodPurge, nil
	default:
		return "", fmt.Errorf("unknown wipe method %q (valid: overwrite, purge)", s)
	}
}

// String implements fmt.Stringer.
func (m WipeMethod) String() string {
	return string(m)
}

// Tier returns the NIST 800-88 sanitization tier the method targets.
func (m WipeMethod) Tier() string {
	switch m {
	case MethodOverwrite:
		return "Clear"
	case MethodPurge:
		return "Purge"
	default:
		return "Unknown"
	}
}

// ErrorKind classifies why a wipe did not succeed.
type ErrorKind string

// Error kinds. KindNone marks a successful outcome.
const (
	KindNone              ErrorKind = ""
	KindPrivilege         ErrorKind = "PrivilegeError"
	KindResourceNotFound  ErrorKind = "ResourceNotFound"
	KindSizeDetermination ErrorKind = "SizeDeterminationError"
	KindIO                ErrorKind = "IOError"
	KindToolUnavailable   ErrorKind = "ToolUnavailable"
	KindCommandFailed     ErrorKind = "CommandFailed"
	KindUnsupportedMethod ErrorKind = "UnsupportedMethod"
	KindWipeInProgress    ErrorKind = "WipeInProgress"
	KindCanceled          ErrorKind = "Canceled"
	KindInvalidArgument   ErrorKind = "InvalidArgument"
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if k == KindNone {
		return "None"
	}
	return string(k)
}

// Err returns the sentinel error for the kind, or nil for KindNone.
func (k ErrorKind) Err() error {
	switch k {
	case KindNone:
		return nil
	case KindPrivilege:
		return wcerrors.ErrPrivilege
	case KindResourceNotFound:
		return wcerrors.ErrResourceNotFound
	case KindSizeDetermination:
		return wcerrors.ErrSizeDetermination
	case KindIO:
		return wcerrors.ErrIO
	case KindToolUnavailable:
		return wcerrors.ErrToolUnavailable
	case KindCommandFailed:
		return wcerrors.ErrCommandFailed
	case KindUnsupportedMethod:
		return wcerrors.ErrUnsupportedMethod
	case KindWipeInProgress:
		return wcerrors.ErrWipeInProgress
	case KindCanceled:
		return wcerrors.ErrWipeCanceled
	case KindInvalidArgument:
		return wcerrors.ErrInvalidPassCount
	default:
		return wcerrors.ErrWipeFailed
	}
}

// WipeOutcome is the terminal result of one wipe call.
// Construct it with Succeeded or Failed.
type WipeOutcome struct {
	// Success is true only when every pass wrote the full device length
	// or the firmware erase completed.
	Success bool `json:"success"`

	// Detail is the human-readable result recorded in the certificate.
	Detail string `json:"detail"`

	// Kind classifies a failure. KindNone on success.
	Kind ErrorKind `json:"kind,omitempty"`

	// BytesPerPass is the device length each overwrite pass covered.
	BytesPerPass int64 `json:"bytes_per_pass,omitempty"`

	// PassesCompleted counts fully written and synced overwrite passes.
	PassesCompleted int `json:"passes_completed,omitempty"`
}

// Succeeded returns a successful outcome.
func Succeeded(detail string, bytesPerPass int64, passes int) WipeOutcome {
	return WipeOutcome{
		Success:         true,
		Detail:          detail,
		Kind:            KindNone,
		BytesPerPass:    bytesPerPass,
		PassesCompleted: passes,
	}
}

// Failed returns a failed outcome of the given kind.
func Failed(kind ErrorKind, detail string) WipeOutcome {
	return WipeOutcome{Kind: kind, Detail: detail}
}

// WithProgress returns a copy of o carrying the byte accounting reached
// before the failure.
func (o WipeOutcome) WithProgress(bytesPerPass int64, passes int) WipeOutcome {
	o.BytesPerPass = bytesPerPass
	o.PassesCompleted = passes
	return o
}

// ProgressFunc receives a phase description and a percentage in [0,100].
// A nil ProgressFunc is treated as a no-op.
type ProgressFunc func(phase string, percent int)
