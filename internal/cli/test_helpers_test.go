package cli

// This file contains test utilities and fakes for testing CLI commands.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/clock"
	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/crypto/rsapss"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/testutil"
	"github.com/mrz1836/wipecert/internal/wipe"
)

// completedAt is the instant the fake clock reports; its Unix time is 1705276800.
//
//nolint:gochecknoglobals // test fixture
var completedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

const testReportID = "WIPE-SN123-1705276800"

// mockTerminalCheckFunc replaces terminalCheck for the duration of the test.
func mockTerminalCheckFunc(t *testing.T, isTerminal bool) {
	t.Helper()
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	t.Cleanup(func() { terminalCheck = original })
}

// noopRunner answers every command with empty output.
type noopRunner struct{}

func (noopRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return nil, nil, nil
}

// privilegedHost is a real device.Host that skips the root check, so a
// regular file can stand in for a block device.
type privilegedHost struct {
	*device.Host
}

func (privilegedHost) Privileged() bool { return true }

// fakeDetector returns a scripted tool detection result.
type fakeDetector struct {
	result *config.ToolDetectionResult
	err    error
}

func (f fakeDetector) Detect(context.Context) (*config.ToolDetectionResult, error) {
	return f.result, f.err
}

// testHarness is an isolated wipecert home with fake host integrations.
type testHarness struct {
	home   string
	drives []domain.DriveDescriptor
	keys   *rsapss.KeyPair

	drivesErr  error
	detector   fakeDetector
	privileged bool
}

// newHarness points WIPECERT_HOME at a temp directory and replaces the
// service factory. Commands then wipe regular files instead of devices.
func newHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{home: t.TempDir(), privileged: true}
	t.Setenv("WIPECERT_HOME", h.home)
	t.Setenv("NO_COLOR", "1")
	mockTerminalCheckFunc(t, false)

	original := newServices
	newServices = func(cfg *config.Config, logger zerolog.Logger) *Services {
		svc := NewServices(cfg, logger)
		host := privilegedHost{device.NewHost(noopRunner{}, device.Tools{})}
		svc.Engine = wipe.NewEngine(host, device.NewHdparm(noopRunner{}, device.Tools{}),
			wipe.Config{ChunkSize: 4096, ProgressInterval: 8192}, logger)
		svc.Drives = func(context.Context) ([]domain.DriveDescriptor, error) {
			return h.drives, h.drivesErr
		}
		svc.Builder = certificate.NewBuilder(clock.Fixed(completedAt))
		svc.Detector = h.detector
		svc.Privileged = func() bool { return h.privileged }
		return svc
	}
	t.Cleanup(func() {
		newServices = original
		CloseLogFile()
	})

	return h
}

// withKeys generates the signing key pair at the default configured location.
func (h *testHarness) withKeys(t *testing.T) *testHarness {
	t.Helper()
	h.keys = testutil.GenerateKeyPairIn(t, filepath.Join(h.home, "keys"))
	return h
}

// diskPattern fills fresh disk images so untouched data is recognizable.
const diskPattern = 0xAB

// addDisk creates an image file filled with diskPattern and registers it as a drive.
func (h *testHarness) addDisk(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{diskPattern}, size), 0o600))
	h.drives = append(h.drives, domain.DriveDescriptor{Path: path, Model: "TestDisk", Size: "64K", Serial: "SN123"})
	return path
}

func (h *testHarness) certDir() string {
	return filepath.Join(h.home, "certificates")
}

// runCLI executes the root command with args and captures both streams.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd(&GlobalFlags{}, BuildInfo{Version: "test"})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// isZeroFilled reports whether the file holds only zero bytes.
func isZeroFilled(t *testing.T, path string) bool {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	return bytes.Equal(data, make([]byte, len(data)))
}

// isUntouched reports whether the file still holds only diskPattern.
func isUntouched(t *testing.T, path string) bool {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	return bytes.Equal(data, bytes.Repeat([]byte{diskPattern}, len(data)))
}

// otherKeys generates an unrelated key pair and returns its public key path.
func (h *testHarness) otherKeys(t *testing.T) string {
	t.Helper()
	return testutil.GenerateKeyPair(t).PublicKeyPath
}
