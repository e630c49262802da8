// Package wipe implements the erasure engine: host-side multi-pass
// overwrite and ATA firmware secure erase.
//
// The engine never returns an error across its boundary. Every call yields
// exactly one domain.WipeOutcome, which the caller certifies whether or not
// the wipe succeeded.
//
// Import rules:
//   - CAN import: internal/constants, internal/ctxutil, internal/device, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/certificate, internal/cli, internal/tui
package wipe

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
)

// Platform is the host capability set the overwrite path needs.
// device.Host is the production implementation.
type Platform interface {
	Privileged() bool
	Exists(path string) bool
	UnmountAll(ctx context.Context, path string)
	Open(path string) (device.BlockDevice, error)
	Size(dev device.BlockDevice) (int64, error)
}

// Config tunes the engine.
type Config struct {
	// ChunkSize is the size of each write. Defaults to 1 MiB.
	ChunkSize int

	// ProgressInterval is the number of bytes between progress reports within
	// a pass. Defaults to 10 MiB.
	ProgressInterval int64

	// UnsupportedMarkers are path substrings identifying devices that do not
	// take the ATA security command pair. Defaults to "nvme".
	UnsupportedMarkers []string
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		ChunkSize:          constants.DefaultChunkSize,
		ProgressInterval:   constants.DefaultProgressInterval,
		UnsupportedMarkers: []string{constants.DefaultUnsupportedMarker},
	}
}

// Engine runs wipes. It is safe for concurrent use; at most one wipe runs
// per device path at a time.
type Engine struct {
	platform   Platform
	firmware   device.Firmware
	cfg        Config
	logger     zerolog.Logger
	random     io.Reader
	credential func() string
	guard      *guard
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRandomSource replaces crypto/rand as the source for the random pass.
func WithRandomSource(r io.Reader) EngineOption {
	return func(e *Engine) {
		e.random = r
	}
}

// WithCredentialGenerator replaces the transient ATA credential generator.
func WithCredentialGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		e.credential = fn
	}
}

// NewEngine creates an Engine. Zero Config fields take their defaults.
func NewEngine(platform Platform, firmware device.Firmware, cfg Config, logger zerolog.Logger, opts ...EngineOption) *Engine {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = def.ProgressInterval
	}
	if len(cfg.UnsupportedMarkers) == 0 {
		cfg.UnsupportedMarkers = def.UnsupportedMarkers
	}

	e := &Engine{
		platform:   platform,
		firmware:   firmware,
		cfg:        cfg,
		logger:     logger.With().Str("component", "wipe").Logger(),
		random:     rand.Reader,
		credential: newCredential,
		guard:      newGuard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wipe dispatches to Overwrite or HardwareErase by method.
func (e *Engine) Wipe(ctx context.Context, path string, method domain.WipeMethod, passes int, progress domain.ProgressFunc) domain.WipeOutcome {
	switch method {
	case domain.MethodOverwrite:
		return e.Overwrite(ctx, path, passes, progress)
	case domain.MethodPurge:
		return e.HardwareErase(ctx, path, progress)
	default:
		return domain.Failed(domain.KindUnsupportedMethod, fmt.Sprintf("Unknown wipe method: %s", method))
	}
}

// Start runs Wipe on a worker goroutine. The outcome is delivered once on
// the returned channel, which is then closed.
func (e *Engine) Start(ctx context.Context, path string, method domain.WipeMethod, passes int, progress domain.ProgressFunc) <-chan domain.WipeOutcome {
	done := make(chan domain.WipeOutcome, 1)
	go func() {
		defer close(done)
		done <- e.Wipe(ctx, path, method, passes, progress)
	}()
	return done
}

// preconditions runs the checks shared by both methods. Nothing on the
// device is touched before they pass.
func (e *Engine) preconditions(path string) (domain.WipeOutcome, bool) {
	if !e.platform.Privileged() {
		return domain.Failed(domain.KindPrivilege, "This operation requires root privileges. Please run with sudo."), false
	}
	if !e.platform.Exists(path) {
		return domain.Failed(domain.KindResourceNotFound, fmt.Sprintf("Device path %s does not exist.", path)), false
	}
	return domain.WipeOutcome{}, true
}

// begin registers path as in flight. The returned release must be called.
func (e *Engine) begin(path string) (func(), domain.WipeOutcome, bool) {
	key := filepath.Clean(path)
	if !e.guard.acquire(key) {
		return nil, domain.Failed(domain.KindWipeInProgress, fmt.Sprintf("A wipe of %s is already in progress.", path)), false
	}
	return func() { e.guard.release(key) }, domain.WipeOutcome{}, true
}

// report invokes the progress callback. A panicking callback is logged and
// otherwise ignored.
func (e *Engine) report(progress domain.ProgressFunc, phase string, percent int) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Interface("panic", r).Str("phase", phase).Msg("progress callback panicked")
		}
	}()
	progress(phase, percent)
}

// newCredential returns 32 hex characters, the full width of the ATA
// security password field.
func newCredential() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
