package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/testutil"
)

func TestDrives_Table(t *testing.T) {
	h := newHarness(t)
	disk := h.addDisk(t, 4096)

	stdout, _, err := runCLI(t, "drives")
	require.NoError(t, err)

	assert.Contains(t, stdout, "PATH")
	assert.Contains(t, stdout, "SERIAL")
	assert.Contains(t, stdout, disk)
	assert.Contains(t, stdout, "TestDisk")
	assert.Contains(t, stdout, "1 drive(s)")
}

func TestDrives_JSON(t *testing.T) {
	h := newHarness(t)
	disk := h.addDisk(t, 4096)

	stdout, _, err := runCLI(t, "drives", "--output", "json")
	require.NoError(t, err)

	var drives []domain.DriveDescriptor
	require.NoError(t, json.Unmarshal([]byte(stdout), &drives))
	require.Len(t, drives, 1)
	assert.Equal(t, disk, drives[0].Path)
	assert.Equal(t, "SN123", drives[0].Serial)
}

func TestDrives_None(t *testing.T) {
	newHarness(t)

	stdout, _, err := runCLI(t, "drives")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No drives found.")
}

func TestDrives_EnumerationError(t *testing.T) {
	h := newHarness(t)
	h.drivesErr = testutil.ErrMockLsblk

	_, _, err := runCLI(t, "drives")
	require.ErrorIs(t, err, testutil.ErrMockLsblk)
	assert.Contains(t, err.Error(), "failed to enumerate drives")
}

func TestDrives_RejectsArguments(t *testing.T) {
	newHarness(t)

	_, _, err := runCLI(t, "drives", "/dev/sda")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
