package wipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/ctxutil"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
)

// flusher is implemented by buffered devices.
type flusher interface {
	Flush() error
}

// InProgress reports whether a wipe of path is running.
func (e *Engine) InProgress(path string) bool {
	return e.guard.busy(filepath.Clean(path))
}

// Overwrite writes the whole device passes times: random data on pass 0,
// zeros on every later pass. Each pass starts at offset 0, writes exactly
// the device length and ends with a durable sync.
//
// ctx is checked between chunks; cancellation yields a Canceled outcome.
func (e *Engine) Overwrite(ctx context.Context, path string, passes int, progress domain.ProgressFunc) domain.WipeOutcome {
	if passes < 1 {
		return domain.Failed(domain.KindInvalidArgument, fmt.Sprintf("Pass count must be at least 1, got %d.", passes))
	}
	if outcome, ok := e.preconditions(path); !ok {
		return outcome
	}

	release, outcome, ok := e.begin(path)
	if !ok {
		return outcome
	}
	defer release()

	logger := e.logger.With().Str("device", path).Str("method", domain.MethodOverwrite.String()).Int("passes", passes).Logger()
	logger.Info().Msg("overwrite starting")

	e.report(progress, fmt.Sprintf("Attempting to unmount %s...", path), 0)
	e.platform.UnmountAll(ctx, path)

	dev, err := e.platform.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return domain.Failed(domain.KindPrivilege, "Permission denied. Please run with sudo.")
		}
		return domain.Failed(domain.KindIO, fmt.Sprintf("IO Error opening device: %v. Is drive in use or failing?", err))
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close device")
		}
	}()

	size, err := e.platform.Size(dev)
	if err != nil || size <= 0 {
		return domain.Failed(domain.KindSizeDetermination, fmt.Sprintf("Unable to determine device size: %v", err))
	}
	logger = logger.With().Int64("bytes", size).Logger()

	buf := make([]byte, min(int64(e.cfg.ChunkSize), size))
	for pass := range passes {
		phase := fmt.Sprintf("Pass %d/%d", pass+1, passes)
		written, err := e.overwritePass(ctx, dev, buf, size, pass, phase, progress)
		if err != nil {
			kind := domain.KindIO
			detail := fmt.Sprintf("IO Error during write: %v. Is drive in use or failing?", err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind = domain.KindCanceled
				detail = fmt.Sprintf("Wipe canceled during %s after %d of %d bytes.", phase, written, size)
			}
			logger.Error().Err(err).Int("pass", pass+1).Int64("written", written).Msg("overwrite failed")
			return domain.Failed(kind, detail).WithProgress(size, pass)
		}
		logger.Info().Int("pass", pass+1).Msg("pass complete")
	}

	e.report(progress, "Overwrite complete.", 100)
	logger.Info().Msg("overwrite complete")
	return domain.Succeeded(constants.OverwriteSuccessDetail, size, passes)
}

// overwritePass writes size bytes from offset 0 and syncs. It returns the
// number of bytes written in this pass.
func (e *Engine) overwritePass(ctx context.Context, dev device.BlockDevice, buf []byte, size int64, pass int, phase string, progress domain.ProgressFunc) (int64, error) {
	if _, err := dev.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to start: %w", err)
	}
	if pass > 0 {
		clear(buf)
	}

	e.report(progress, "Starting "+phase+"...", 0)

	var written int64
	nextReport := e.cfg.ProgressInterval
	for written < size {
		if err := ctxutil.Canceled(ctx); err != nil {
			_ = durable(dev)
			return written, err
		}

		chunk := buf[:min(int64(len(buf)), size-written)]
		if pass == 0 {
			if _, err := io.ReadFull(e.random, chunk); err != nil {
				return written, fmt.Errorf("random source: %w", err)
			}
		}

		n, err := dev.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if n < len(chunk) {
			if n == 0 {
				return written, io.ErrShortWrite
			}
			if err := durable(dev); err != nil {
				return written, fmt.Errorf("sync after short write: %w", err)
			}
		}

		if written >= nextReport && written < size {
			e.report(progress, phase, percent(written, size))
			for nextReport <= written {
				nextReport += e.cfg.ProgressInterval
			}
		}
	}

	if err := durable(dev); err != nil {
		return written, fmt.Errorf("sync at end of pass: %w", err)
	}
	e.report(progress, phase, 100)
	return written, nil
}

// durable flushes buffered data, if the device buffers, then syncs.
func durable(dev device.BlockDevice) error {
	if f, ok := dev.(flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	return dev.Sync()
}

func percent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	p := int(done * 100 / total)
	return min(p, 100)
}
