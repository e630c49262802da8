package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var errZeroLength = errors.New("device reports zero length")

// BlockDevice is an open device handle the overwrite loop writes through.
// *os.File satisfies it.
type BlockDevice interface {
	io.Writer
	io.Seeker
	io.Closer

	// Sync commits written data to stable storage.
	Sync() error
}

// Host is the production host integration for the erasure engine.
type Host struct {
	runner Runner
	tools  Tools
	euid   func() int
}

// NewHost creates a Host. A nil runner uses ExecRunner.
func NewHost(runner Runner, tools Tools) *Host {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Host{runner: runner, tools: tools, euid: os.Geteuid}
}

// Privileged reports whether the process runs with an effective UID of 0.
func (h *Host) Privileged() bool {
	return h.euid() == 0
}

// Exists reports whether path exists.
func (h *Host) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// UnmountAll unmounts path and each of its partitions.
//
// Failures are ignored on purpose: most targets are not mounted at all, and
// a filesystem that stays mounted surfaces later as a write error.
func (h *Host) UnmountAll(ctx context.Context, path string) {
	logger := zerolog.Ctx(ctx).With().Str("component", "device").Str("device", path).Logger()

	targets := append([]string{path}, h.Partitions(ctx, path)...)
	for _, target := range targets {
		if _, _, err := h.runner.Run(ctx, h.tools.umount(), target); err != nil {
			logger.Debug().Str("target", target).Err(err).Msg("unmount skipped")
			continue
		}
		logger.Debug().Str("target", target).Msg("unmounted")
	}
}

// Partitions lists the partition device paths of path using
// `lsblk -ln -o NAME`. The first line names the device itself and is skipped.
// Any failure yields no partitions.
func (h *Host) Partitions(ctx context.Context, path string) []string {
	stdout, _, err := h.runner.Run(ctx, h.tools.lsblk(), "-ln", "-o", "NAME", path)
	if err != nil {
		return nil
	}

	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	if len(lines) <= 1 {
		return nil
	}

	parts := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		parts = append(parts, "/dev/"+name)
	}
	return parts
}

// Open opens path for raw writes.
func (h *Host) Open(path string) (BlockDevice, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0) //nolint:gosec // the device path is the operator's explicit target
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	return f, nil
}

// Size returns the exact byte length of dev. It asks the kernel first and
// falls back to seeking to the end. The position is left at offset 0.
func (h *Host) Size(dev BlockDevice) (int64, error) {
	if fd, ok := dev.(interface{ Fd() uintptr }); ok {
		if size, err := blockDeviceSize(fd.Fd()); err == nil && size > 0 {
			return size, nil
		}
	}
	return seekSize(dev)
}

func seekSize(dev io.Seeker) (int64, error) {
	end, err := dev.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}
	if _, err := dev.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to start: %w", err)
	}
	if end == 0 {
		return 0, errZeroLength
	}
	return end, nil
}
