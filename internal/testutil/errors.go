// Package testutil provides testing utilities for wipecert.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate host failures in tests.
var (
	// ErrMockIO simulates a failing device write.
	ErrMockIO = errors.New("input/output error")

	// ErrMockDeviceBusy simulates a device held open by another process.
	ErrMockDeviceBusy = errors.New("device or resource busy")

	// ErrMockFrozen simulates hdparm refusing a frozen drive.
	ErrMockFrozen = errors.New("SECURITY_SET_PASS: Input/output error")

	// ErrMockLsblk simulates an enumeration failure.
	ErrMockLsblk = errors.New("lsblk: failed to access sysfs directory")
)
