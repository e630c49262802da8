// Package constants provides centralized constant values used throughout wipecert.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Sanitization standard and record vocabulary.
const (
	// Standard is the sanitization guideline named in every certificate.
	Standard = "NIST SP 800-88 Rev. 1"

	// StatusSuccess is the certificate status for a completed wipe.
	StatusSuccess = "Success"

	// StatusFailure is the certificate status for a wipe that did not complete.
	StatusFailure = "Failure"

	// ReportIDPrefix prefixes every report identifier.
	ReportIDPrefix = "WIPE"

	// NoSerial stands in for the serial number when the drive does not report one.
	NoSerial = "NOSERIAL"

	// NotAvailable is used for drive attributes the enumerator could not read.
	NotAvailable = "N/A"

	// TimestampLayout is the certificate timestamp format: UTC with microseconds.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Overwrite tuning.
const (
	// DefaultChunkSize is the write size used by the overwrite loop.
	DefaultChunkSize = 1 << 20

	// DefaultProgressInterval is the number of bytes between progress reports.
	DefaultProgressInterval = 10 << 20

	// DefaultPasses is the default number of overwrite passes.
	// Pass 0 is random data, every later pass writes zeros.
	DefaultPasses = 3

	// OverwriteSuccessDetail is the outcome detail for a completed overwrite.
	OverwriteSuccessDetail = "Overwrite successful."

	// PurgeSuccessDetail is the outcome detail for a completed firmware erase.
	PurgeSuccessDetail = "Hardware secure erase command completed successfully."
)

// Hardware erase.
const (
	// DefaultUnsupportedMarker identifies devices that do not accept the
	// ATA security command pair.
	DefaultUnsupportedMarker = "nvme"

	// SecurityUser is the ATA security user hdparm sets the credential for.
	SecurityUser = "u"
)

// Signing.
const (
	// DefaultKeyBits is the RSA modulus size used by key generation.
	DefaultKeyBits = 4096

	// MinKeyBits is the smallest RSA modulus wipecert accepts.
	MinKeyBits = 2048
)

// Directory names and paths used by wipecert for organizing data.
const (
	// WipecertHome is the hidden directory name where wipecert stores all its data.
	// This directory is created in the user's home directory.
	WipecertHome = ".wipecert"

	// CertificatesDir is the directory name where signed certificates are stored.
	CertificatesDir = "certificates"

	// KeysDir is the directory name where signing keys are stored.
	KeysDir = "keys"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Timeouts.
const (
	// LockTimeout bounds how long the certificate store waits for its lock.
	LockTimeout = 5 * time.Second

	// LockRetryInterval is how often a contended lock is retried.
	LockRetryInterval = 50 * time.Millisecond

	// CommandTimeout bounds short informational commands (lsblk).
	// Firmware erase commands are never bounded.
	CommandTimeout = 30 * time.Second
)

// Log rotation for ~/.wipecert/logs/wipecert.log.
const (
	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is the retention of rotated files.
	LogMaxAgeDays = 30

	// LogCompress gzips rotated files.
	LogCompress = true
)

// Tool detection.
const (
	// ToolDetectionTimeout bounds the whole preflight tool check.
	ToolDetectionTimeout = 5 * time.Second

	// MinVersionUtilLinux is the oldest util-linux whose lsblk supports -J.
	MinVersionUtilLinux = "2.27"

	// MinVersionHdparm is the oldest hdparm with --user-master.
	MinVersionHdparm = "9.0"
)

// HomeEnvVar overrides the wipecert home directory.
const HomeEnvVar = "WIPECERT_HOME"
