//go:build !linux

package device

import wcerrors "github.com/mrz1836/wipecert/internal/errors"

func blockDeviceSize(uintptr) (int64, error) {
	return 0, wcerrors.ErrUnsupportedOS
}
