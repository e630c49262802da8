//go:build linux

package device

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// blockDeviceSize queries the kernel with BLKGETSIZE64, which writes a
// u64 on every architecture. Regular files fail with ENOTTY.
func blockDeviceSize(fd uintptr) (int64, error) {
	var size uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&size))) //nolint:gosec // kernel writes into size
	if errno != 0 {
		return 0, errno
	}
	if size > math.MaxInt64 {
		return 0, unix.EOVERFLOW
	}
	return int64(size), nil
}
