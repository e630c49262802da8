package certificate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrz1836/wipecert/internal/crypto"
	"github.com/mrz1836/wipecert/internal/crypto/rsapss"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Status is the verdict of a verification.
type Status int

const (
	// StatusValid means the signature matches the record under the public key.
	StatusValid Status = iota
	// StatusInvalid means the record is well formed but the signature does not match.
	StatusInvalid
	// StatusMalformed means the record, signature or key could not be decoded.
	StatusMalformed
	// StatusError means verification did not complete, e.g. the context was
	// canceled. It says nothing about the certificate itself.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusInvalid:
		return "Invalid"
	case StatusMalformed:
		return "Malformed"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText lets Status serialize as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of verifying one certificate.
type Result struct {
	Status Status `json:"status"`

	// Record is the decoded certificate. Nil when the input could not be parsed.
	Record *Record `json:"-"`

	// Err explains any verdict other than Valid. It wraps
	// errors.ErrInvalidSignature, errors.ErrMalformedRecord or, for
	// StatusError, the context error.
	Err error `json:"-"`
}

// OK reports whether the certificate verified.
func (r Result) OK() bool {
	return r.Status == StatusValid
}

type wireDriveInfo struct {
	Model  *string `json:"model"`
	Serial *string `json:"serial"`
	Size   *string `json:"size"`
	Path   *string `json:"path"`
}

type wireWipeDetails struct {
	Method   *string `json:"method"`
	Standard *string `json:"standard"`
	Status   *string `json:"status"`
	Details  *string `json:"details"`
}

type wireRecord struct {
	ReportID    *string          `json:"reportID"`
	Timestamp   *string          `json:"timestamp"`
	DriveInfo   *wireDriveInfo   `json:"driveInfo"`
	WipeDetails *wireWipeDetails `json:"wipeDetails"`
	Signature   *string          `json:"signature"`
}

// wireMembers lists the exact member names accepted per object, keyed by
// the enclosing member ("" for the top level).
var wireMembers = map[string]map[string]struct{}{
	"":            {"reportID": {}, "timestamp": {}, "driveInfo": {}, "wipeDetails": {}, "signature": {}},
	"driveInfo":   {"model": {}, "serial": {}, "size": {}, "path": {}},
	"wipeDetails": {"method": {}, "standard": {}, "status": {}, "details": {}},
}

// Parse decodes a persisted certificate. Unknown, misspelled, repeated or
// missing members, null or non-string values and trailing data are rejected
// with errors.ErrMalformedRecord. Member names must match exactly, including
// case. The signature may be absent.
func Parse(data []byte) (Record, error) {
	if err := checkMembers(json.NewDecoder(bytes.NewReader(data)), ""); err != nil {
		return Record{}, malformed("%v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireRecord
	if err := dec.Decode(&w); err != nil {
		return Record{}, malformed("invalid JSON: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, malformed("unexpected data after the certificate object")
	}

	if w.DriveInfo == nil {
		return Record{}, malformed("missing driveInfo")
	}
	if w.WipeDetails == nil {
		return Record{}, malformed("missing wipeDetails")
	}

	fields := []struct {
		name string
		val  *string
	}{
		{"reportID", w.ReportID},
		{"timestamp", w.Timestamp},
		{"driveInfo.model", w.DriveInfo.Model},
		{"driveInfo.serial", w.DriveInfo.Serial},
		{"driveInfo.size", w.DriveInfo.Size},
		{"driveInfo.path", w.DriveInfo.Path},
		{"wipeDetails.method", w.WipeDetails.Method},
		{"wipeDetails.standard", w.WipeDetails.Standard},
		{"wipeDetails.status", w.WipeDetails.Status},
		{"wipeDetails.details", w.WipeDetails.Details},
	}
	for _, f := range fields {
		if f.val == nil {
			return Record{}, malformed("missing %s", f.name)
		}
	}

	r := Record{
		ReportID:  *w.ReportID,
		Timestamp: *w.Timestamp,
		DriveInfo: DriveInfo{
			Model:  *w.DriveInfo.Model,
			Serial: *w.DriveInfo.Serial,
			Size:   *w.DriveInfo.Size,
			Path:   *w.DriveInfo.Path,
		},
		WipeDetails: WipeDetails{
			Method:   *w.WipeDetails.Method,
			Standard: *w.WipeDetails.Standard,
			Status:   *w.WipeDetails.Status,
			Details:  *w.WipeDetails.Details,
		},
	}
	if w.Signature != nil {
		r.Signature = *w.Signature
	}
	return r, nil
}

// checkMembers walks one JSON value and rejects object members that repeat
// or that are not spelled exactly as wireMembers lists them.
// encoding/json keeps the last duplicate and matches names without regard
// to case, so either would let a forged value through under a valid
// signature.
func checkMembers(dec *json.Decoder, parent string) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}

	switch delim {
	case '{':
		allowed := wireMembers[parent]
		seen := make(map[string]struct{})
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("invalid JSON: %w", err)
			}
			key, _ := keyTok.(string)
			folded := strings.ToLower(key)
			if _, dup := seen[folded]; dup {
				return fmt.Errorf("duplicate member %q", key)
			}
			seen[folded] = struct{}{}
			if allowed != nil {
				if _, known := allowed[key]; !known {
					return fmt.Errorf("unknown member %q", key)
				}
			}
			if err := checkMembers(dec, key); err != nil {
				return err
			}
		}
	case '[':
		for dec.More() {
			if err := checkMembers(dec, parent); err != nil {
				return err
			}
		}
	}

	// closing delimiter
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// Verify checks a persisted certificate against v. The input is not modified.
//
// Any change inside a string value or the signature yields StatusInvalid.
// A change to a member name yields StatusMalformed instead: the record no
// longer decodes, so there is nothing to check the signature against.
// When ctx ends before the check completes the verdict is StatusError and
// Err wraps ctx.Err().
func Verify(ctx context.Context, data []byte, v crypto.Verifier) Result {
	r, err := Parse(data)
	if err != nil {
		return Result{Status: StatusMalformed, Err: err}
	}
	if !r.Signed() {
		return Result{Status: StatusMalformed, Record: &r, Err: malformed("missing signature")}
	}

	sig, err := base64.StdEncoding.DecodeString(r.Signature)
	if err != nil {
		return Result{Status: StatusMalformed, Record: &r, Err: malformed("signature is not valid base64: %v", err)}
	}

	if err := v.Verify(ctx, Canonicalize(r), sig); err != nil {
		switch {
		case errors.Is(err, wcerrors.ErrInvalidSignature):
			return Result{Status: StatusInvalid, Record: &r, Err: err}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return Result{Status: StatusError, Record: &r, Err: err}
		}
		return Result{Status: StatusMalformed, Record: &r, Err: fmt.Errorf("%w: %w", wcerrors.ErrMalformedRecord, err)}
	}

	return Result{Status: StatusValid, Record: &r}
}

// VerifyWithKey verifies data against a PEM public key. A key that cannot be
// parsed yields StatusMalformed.
func VerifyWithKey(ctx context.Context, data, publicKeyPEM []byte) Result {
	pub, err := rsapss.ParsePublicKeyPEM(publicKeyPEM)
	if err != nil {
		return Result{Status: StatusMalformed, Err: fmt.Errorf("%w: %w", wcerrors.ErrMalformedRecord, err)}
	}
	return Verify(ctx, data, rsapss.NewVerifier(pub))
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", wcerrors.ErrMalformedRecord, fmt.Sprintf(format, args...))
}
