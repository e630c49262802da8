package flock

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrz1836/wipecert/internal/constants"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// Lock is a held advisory lock on a lock file.
type Lock struct {
	file *os.File
}

// Acquire opens (creating if needed) the lock file at path and retries an
// exclusive lock until it succeeds, timeout elapses, or ctx is done.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // lock path is built by the store
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			_ = file.Close()
			return nil, ctxErr
		}

		if err = Exclusive(file.Fd()); err == nil {
			return &Lock{file: file}, nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, fmt.Errorf("%w after %v", wcerrors.ErrLockTimeout, timeout)
		}

		timer := time.NewTimer(constants.LockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = file.Close()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Release unlocks and closes the lock file. Safe on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = Unlock(l.file.Fd())
	err := l.file.Close()
	l.file = nil
	return err
}
