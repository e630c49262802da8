package cli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/clock"
	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/crypto/rsapss"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/wipe"
)

// DriveLister returns the candidate drives on this host.
type DriveLister func(ctx context.Context) ([]domain.DriveDescriptor, error)

// Wiper starts a wipe and delivers its outcome once. *wipe.Engine implements it.
type Wiper interface {
	Start(ctx context.Context, path string, method domain.WipeMethod, passes int, progress domain.ProgressFunc) <-chan domain.WipeOutcome
}

// Services are the collaborators commands share, wired from configuration.
type Services struct {
	Config     *config.Config
	Drives     DriveLister
	Engine     Wiper
	Builder    *certificate.Builder
	Store      *certificate.FileStore
	Keys       *rsapss.KeyManager
	Detector   config.ToolDetector
	Privileged func() bool
}

// newServices builds the Services for a command. Tests replace it.
var newServices = NewServices //nolint:gochecknoglobals // test injection point

// NewServices wires the production collaborators.
//
// lsblk and umount run under the configured command timeout. hdparm does
// not: a firmware erase takes as long as the drive needs.
func NewServices(cfg *config.Config, logger zerolog.Logger) *Services {
	tools := device.Tools{
		Lsblk:  cfg.Tools.Lsblk,
		Umount: cfg.Tools.Umount,
		Hdparm: cfg.Tools.Hdparm,
	}
	bounded := device.TimeoutRunner{Runner: device.ExecRunner{}, Timeout: cfg.Tools.CommandTimeout}

	host := device.NewHost(bounded, tools)
	engine := wipe.NewEngine(host, device.NewHdparm(device.ExecRunner{}, tools), wipe.Config{
		ChunkSize:          cfg.Wipe.ChunkSize,
		ProgressInterval:   cfg.Wipe.ProgressInterval,
		UnsupportedMarkers: cfg.Wipe.UnsupportedMarkers,
	}, logger)

	return &Services{
		Config: cfg,
		Drives: func(ctx context.Context) ([]domain.DriveDescriptor, error) {
			return device.Enumerate(ctx, bounded, tools)
		},
		Engine:     engine,
		Builder:    certificate.NewBuilder(clock.RealClock{}),
		Store:      certificate.NewFileStore(cfg.Certificates.Dir, certificate.WithLockTimeout(cfg.Certificates.LockTimeout)),
		Keys:       rsapss.NewKeyManager(cfg.Signing.PrivateKey),
		Detector:   config.NewToolDetector(cfg.Tools),
		Privileged: host.Privileged,
	}
}
