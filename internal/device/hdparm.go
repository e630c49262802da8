package device

import (
	"context"

	"github.com/mrz1836/wipecert/internal/constants"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Firmware issues the ATA security command pair.
type Firmware interface {
	// SetSecurityCredential sets a user password on the drive, enabling security.
	SetSecurityCredential(ctx context.Context, path, credential string) error

	// IssueSecureErase erases the drive using the credential set above.
	// It blocks for the whole firmware operation.
	IssueSecureErase(ctx context.Context, path, credential string) error
}

// Hdparm implements Firmware with hdparm.
type Hdparm struct {
	runner Runner
	tools  Tools
}

// NewHdparm creates an Hdparm. A nil runner uses ExecRunner.
func NewHdparm(runner Runner, tools Tools) *Hdparm {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Hdparm{runner: runner, tools: tools}
}

// SetSecurityCredential runs `hdparm --user-master u --security-set-pass <cred> <path>`.
func (h *Hdparm) SetSecurityCredential(ctx context.Context, path, credential string) error {
	_, _, err := h.runner.Run(ctx, h.tools.hdparm(),
		"--user-master", constants.SecurityUser, "--security-set-pass", credential, path)
	return wcerrors.Wrap(err, "hdparm --security-set-pass")
}

// IssueSecureErase runs `hdparm --user-master u --security-erase <cred> <path>`.
func (h *Hdparm) IssueSecureErase(ctx context.Context, path, credential string) error {
	_, _, err := h.runner.Run(ctx, h.tools.hdparm(),
		"--user-master", constants.SecurityUser, "--security-erase", credential, path)
	return wcerrors.Wrap(err, "hdparm --security-erase")
}

var _ Firmware = (*Hdparm)(nil)
