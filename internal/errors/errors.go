// Package errors provides centralized error handling for wipecert.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrPrivilege indicates the caller lacks the elevated privilege needed
	// to open a raw block device for writing.
	ErrPrivilege = errors.New("elevated privilege required")

	// ErrResourceNotFound indicates the device path does not exist.
	ErrResourceNotFound = errors.New("device not found")

	// ErrSizeDetermination indicates neither the device-size query nor the
	// seek-to-end fallback produced a usable device length.
	ErrSizeDetermination = errors.New("unable to determine device size")

	// ErrIO indicates a read, write, seek or sync failure against the device.
	ErrIO = errors.New("device I/O failed")

	// ErrToolUnavailable indicates a required external utility (lsblk, hdparm)
	// is not installed or not on PATH.
	ErrToolUnavailable = errors.New("required tool unavailable")

	// ErrCommandFailed indicates an external command ran and exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrUnsupportedMethod indicates the requested sanitize method cannot be
	// applied to this device class.
	ErrUnsupportedMethod = errors.New("unsupported wipe method")

	// ErrWipeInProgress indicates a wipe is already running against the same path.
	ErrWipeInProgress = errors.New("wipe already in progress")

	// ErrWipeCanceled indicates the overwrite loop observed a stop signal.
	ErrWipeCanceled = errors.New("wipe canceled")

	// ErrWipeFailed indicates the wipe finished without sanitizing the device.
	// The certificate is still written; this only drives the exit code.
	ErrWipeFailed = errors.New("wipe failed")

	// ErrInvalidPassCount indicates a pass count below one.
	ErrInvalidPassCount = errors.New("pass count must be at least 1")

	// ErrMalformedRecord indicates a certificate could not be parsed, lacks a
	// signature, or carries an undecodable key or signature.
	ErrMalformedRecord = errors.New("malformed certificate")

	// ErrInvalidSignature indicates a structurally valid certificate whose
	// signature does not match its content under the given public key.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrVerificationFailed indicates at least one certificate did not verify.
	ErrVerificationFailed = errors.New("certificate verification failed")

	// ErrKeyNotFound indicates a configured key file does not exist.
	ErrKeyNotFound = errors.New("key file not found")

	// ErrInvalidKey indicates a key file could not be parsed as an RSA key.
	ErrInvalidKey = errors.New("invalid key")

	// ErrKeyExists indicates key generation would overwrite an existing key.
	ErrKeyExists = errors.New("key file already exists")

	// ErrCertificateExists indicates a certificate with the same report ID is
	// already stored. Certificates are never overwritten.
	ErrCertificateExists = errors.New("certificate already exists")

	// ErrNoDrivesFound indicates enumeration returned no candidate drives.
	ErrNoDrivesFound = errors.New("no drives found")

	// ErrCertificateNotFound indicates the requested certificate does not exist.
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidWipe indicates an invalid wipe configuration value.
	ErrConfigInvalidWipe = errors.New("invalid wipe configuration")

	// ErrConfigInvalidSigning indicates an invalid signing configuration value.
	ErrConfigInvalidSigning = errors.New("invalid signing configuration")

	// ErrConfigInvalidCertificates indicates an invalid certificates configuration value.
	ErrConfigInvalidCertificates = errors.New("invalid certificates configuration")

	// ErrConfigInvalidTools indicates an invalid tools configuration value.
	ErrConfigInvalidTools = errors.New("invalid tools configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedOS indicates the current operating system is not supported.
	ErrUnsupportedOS = errors.New("unsupported operating system")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the --yes flag.
	ErrNonInteractiveMode = errors.New("use --yes in non-interactive mode")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrMenuCanceled indicates that the user canceled a menu operation.
	ErrMenuCanceled = errors.New("menu canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
