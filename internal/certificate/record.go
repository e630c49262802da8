// Package certificate builds, signs, verifies and stores wipe certificates.
//
// A certificate is a JSON object with a fixed field set. Signing and
// verification both run the record through Canonicalize, which writes the
// fields in a fixed order with a fixed layout; the signature is never part of
// the signed bytes. The persisted file is the same layout with "signature"
// appended as the last top-level member.
package certificate

// Record is a wipe certificate.
type Record struct {
	ReportID    string      `json:"reportID"`
	Timestamp   string      `json:"timestamp"`
	DriveInfo   DriveInfo   `json:"driveInfo"`
	WipeDetails WipeDetails `json:"wipeDetails"`

	// Signature is the base64 RSA-PSS signature over Canonicalize(record).
	// Empty until the record is signed.
	Signature string `json:"signature,omitempty"`
}

// DriveInfo describes the sanitized device.
type DriveInfo struct {
	Model  string `json:"model"`
	Serial string `json:"serial"`
	Size   string `json:"size"`
	Path   string `json:"path"`
}

// WipeDetails describes what was done and whether it worked.
type WipeDetails struct {
	Method   string `json:"method"`
	Standard string `json:"standard"`
	Status   string `json:"status"`
	Details  string `json:"details"`
}

// Signed reports whether the record carries a signature.
func (r Record) Signed() bool {
	return r.Signature != ""
}

// Unsigned returns a copy of r without its signature.
func (r Record) Unsigned() Record {
	r.Signature = ""
	return r
}
