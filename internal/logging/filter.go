// Package logging provides logging utilities including sensitive data filtering.
// This package contains hooks and utilities for zerolog that help ensure
// ATA security credentials and signing keys are never written to log files.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// redaction pairs a pattern with its replacement template.
type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// sensitivePatterns are applied in order. Whole PEM blocks go first so the
// header-only pattern only catches truncated keys.
var sensitivePatterns = []redaction{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// PEM private key blocks, with real or JSON-escaped newlines.
	{
		regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`),
		RedactedValue,
	},

	// A private key header with no matching footer.
	{
		regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----\S*`),
		RedactedValue,
	},

	// hdparm security credentials: --security-set-pass <pw>, --security-erase <pw>, ...
	{
		regexp.MustCompile(`(--security-(?:set-pass|erase-enhanced|erase|unlock|disable)\s+)\S+`),
		"${1}" + RedactedValue,
	},

	// Generic secret assignments (password=..., secret: ...).
	{
		regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)(\s*[:=]\s*)["']?[^\s"']{8,}["']?`),
		"${1}${2}" + RedactedValue,
	},

	// Bearer tokens.
	{
		regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),
		RedactedValue,
	},
}

// sensitiveFieldNames contains field names that should always have their values redacted.
// Case-insensitive substring matching is performed.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"password",
	"passwd",
	"secret",
	"credential",
	"private_key",
	"privatekey",
	"private-key",
	"security_pass",
	"master_pass",
	"token",
}

// SensitiveDataHook is a zerolog hook that flags log entries whose message
// matches a sensitive pattern.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
//
// zerolog does not let a hook rewrite the message, so the hook only marks
// the event. Redaction on disk is done by FilteringWriter; call sites use
// SafeValue for fields.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, r := range sensitivePatterns {
		if r.pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
// Flag names such as --security-erase are kept so the log stays readable.
func FilterSensitiveValue(value string) string {
	result := value
	for _, r := range sensitivePatterns {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// RedactIfSensitive returns [REDACTED] if the field name indicates sensitive data,
// otherwise the value with sensitive patterns filtered.
func RedactIfSensitive(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SafeValue returns a filtered value for a field.
//
// Usage:
//
//	logger.Debug().Str("args", logging.SafeValue("args", strings.Join(args, " "))).Msg("running hdparm")
func SafeValue(fieldName, value string) string {
	return RedactIfSensitive(fieldName, value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// It wraps the log file writer so credentials are never written to disk.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It reports len(p) on success so callers do not see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err := fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
