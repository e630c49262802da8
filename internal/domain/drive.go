package domain

// DriveDescriptor identifies a storage device as reported by the enumerator.
// All fields are display strings; Size keeps the enumerator's human form (e.g. "10G").
type DriveDescriptor struct {
	// Path is the device node, e.g. /dev/sda.
	Path string `json:"path"`

	// Model is the vendor model string.
	Model string `json:"model"`

	// Size is the human-readable capacity.
	Size string `json:"size"`

	// Serial is the device serial number. It may be empty or "N/A".
	Serial string `json:"serial"`
}
