package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice rather than a map because errors.Is() needs chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Erasure
	// ===================
	{
		err: ErrPrivilege,
		info: ErrorInfo{
			Message: "This operation requires root privileges.",
			Action:  "Re-run the command with sudo.",
		},
	},
	{
		err: ErrResourceNotFound,
		info: ErrorInfo{
			Message: "The device path does not exist.",
			Action:  "Run 'wipecert drives' to list available devices.",
		},
	},
	{
		err: ErrSizeDetermination,
		info: ErrorInfo{
			Message: "Unable to determine the device size.",
			Action:  "Check that the path is a block device and is not in use.",
		},
	},
	{
		err: ErrIO,
		info: ErrorInfo{
			Message: "An I/O error occurred while writing to the device.",
			Action:  "Check whether the drive is in use or failing, then start a new wipe.",
		},
	},
	{
		err: ErrToolUnavailable,
		info: ErrorInfo{
			Message: "A required system utility is not installed.",
			Action:  "Install util-linux (lsblk, umount) and hdparm.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "The hardware command failed. The drive may not support it or is frozen.",
			Action:  "Power-cycle the drive to clear the frozen state, or use --method overwrite.",
		},
	},
	{
		err: ErrUnsupportedMethod,
		info: ErrorInfo{
			Message: "The requested wipe method is not supported for this device.",
			Action:  "Use --method overwrite for this device.",
		},
	},
	{
		err: ErrWipeInProgress,
		info: ErrorInfo{
			Message: "A wipe is already running on this device.",
			Action:  "Wait for the running wipe to finish.",
		},
	},
	{
		err: ErrWipeCanceled,
		info: ErrorInfo{
			Message: "The wipe was interrupted before completion.",
			Action:  "The device is only partially overwritten. Start a new wipe.",
		},
	},
	{
		err: ErrWipeFailed,
		info: ErrorInfo{
			Message: "The wipe did not complete. A failure certificate was recorded.",
			Action:  "Review the certificate details and start a new wipe.",
		},
	},

	// ===================
	// Certification
	// ===================
	{
		err: ErrMalformedRecord,
		info: ErrorInfo{
			Message: "The certificate is malformed and cannot be verified.",
			Action:  "Check that the file is an unmodified wipecert certificate.",
		},
	},
	{
		err: ErrInvalidSignature,
		info: ErrorInfo{
			Message: "The certificate signature is invalid. It is not authentic or was tampered with.",
			Action:  "Obtain the original certificate and the matching public key.",
		},
	},
	{
		err: ErrVerificationFailed,
		info: ErrorInfo{
			Message: "One or more certificates failed verification.",
			Action:  "Review the per-certificate results above.",
		},
	},
	{
		err: ErrKeyNotFound,
		info: ErrorInfo{
			Message: "The signing key file was not found.",
			Action:  "Run 'wipecert keys generate' or set signing.private_key in config.",
		},
	},
	{
		err: ErrInvalidKey,
		info: ErrorInfo{
			Message: "The key file is not a valid RSA PEM key.",
			Action:  "Provide a PKCS#1 or PKCS#8 private key, or a PKIX public key.",
		},
	},
	{
		err: ErrKeyExists,
		info: ErrorInfo{
			Message: "A key already exists at the destination.",
			Action:  "Choose another directory with --dir or remove the existing key.",
		},
	},
	{
		err: ErrCertificateExists,
		info: ErrorInfo{
			Message: "A certificate with this report ID already exists.",
			Action:  "Certificates are never overwritten. Start a new wipe for a new report.",
		},
	},
	{
		err: ErrNoDrivesFound,
		info: ErrorInfo{
			Message: "No drives were found.",
			Action:  "Check that lsblk is installed and the drive is attached.",
		},
	},
	{
		err: ErrCertificateNotFound,
		info: ErrorInfo{
			Message: "The certificate file was not found.",
			Action:  "Check the path and try again.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for the certificate store lock.",
			Action:  "Another wipecert process may be writing. Retry shortly.",
		},
	},

	// ===================
	// Configuration & input
	// ===================
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "No configuration was loaded.",
		},
	},
	{
		err: ErrConfigInvalidWipe,
		info: ErrorInfo{
			Message: "The wipe configuration is invalid.",
			Action:  "Check the wipe section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidSigning,
		info: ErrorInfo{
			Message: "The signing configuration is invalid.",
			Action:  "Check the signing section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidCertificates,
		info: ErrorInfo{
			Message: "The certificates configuration is invalid.",
			Action:  "Check the certificates section of your config file.",
		},
	},
	{
		err: ErrConfigInvalidTools,
		info: ErrorInfo{
			Message: "The tools configuration is invalid.",
			Action:  "Check the tools section of your config file.",
		},
	},
	{
		err: ErrInvalidPassCount,
		info: ErrorInfo{
			Message: "The pass count must be at least 1.",
			Action:  "Use --passes with a positive number.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "Confirmation is required but no terminal is attached.",
			Action:  "Pass --yes to confirm the destructive operation.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation canceled. No data was modified.",
		},
	},
	{
		err: ErrMenuCanceled,
		info: ErrorInfo{
			Message: "Operation canceled. No data was modified.",
		},
	},
	{
		err: ErrUnsupportedOS,
		info: ErrorInfo{
			Message: "Your operating system is not supported for this operation.",
			Action:  "wipecert sanitizes devices on Linux only.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries a direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take. The action is empty when there is nothing to do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
