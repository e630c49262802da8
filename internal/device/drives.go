package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/domain"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// lsblkOutput is the JSON shape of `lsblk -dJ -o NAME,MODEL,SIZE,SERIAL`.
// Older util-linux releases emit null for unknown columns.
type lsblkOutput struct {
	BlockDevices []struct {
		Name   *string `json:"name"`
		Model  *string `json:"model"`
		Size   *string `json:"size"`
		Serial *string `json:"serial"`
	} `json:"blockdevices"`
}

// Enumerate lists whole disks, excluding loop devices (major 7).
func Enumerate(ctx context.Context, runner Runner, tools Tools) ([]domain.DriveDescriptor, error) {
	stdout, _, err := runner.Run(ctx, tools.lsblk(), "-dJ", "-o", "NAME,MODEL,SIZE,SERIAL", "-e7")
	if err != nil {
		return nil, wcerrors.Wrap(err, "failed to list drives")
	}
	return parseLsblk(stdout)
}

func parseLsblk(data []byte) ([]domain.DriveDescriptor, error) {
	var out lsblkOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	drives := make([]domain.DriveDescriptor, 0, len(out.BlockDevices))
	for _, d := range out.BlockDevices {
		drives = append(drives, domain.DriveDescriptor{
			Path:   "/dev/" + field(d.Name),
			Model:  field(d.Model),
			Size:   field(d.Size),
			Serial: field(d.Serial),
		})
	}
	return drives, nil
}

func field(v *string) string {
	if v == nil {
		return constants.NotAvailable
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return constants.NotAvailable
	}
	return s
}

// Lookup returns the descriptor for path from the enumerated drives.
// A path the enumerator does not report yields a descriptor with only Path set
// and every other field "N/A".
func Lookup(drives []domain.DriveDescriptor, path string) domain.DriveDescriptor {
	for _, d := range drives {
		if d.Path == path {
			return d
		}
	}
	return domain.DriveDescriptor{
		Path:   path,
		Model:  constants.NotAvailable,
		Size:   constants.NotAvailable,
		Serial: constants.NotAvailable,
	}
}
