package config

import (
	"github.com/mrz1836/wipecert/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Wipe: WipeConfig{
			// Overwrite works on every device class; purge must be asked for.
			Method:             "overwrite",
			Passes:             constants.DefaultPasses,
			ChunkSize:          constants.DefaultChunkSize,
			ProgressInterval:   constants.DefaultProgressInterval,
			UnsupportedMarkers: []string{constants.DefaultUnsupportedMarker},
		},
		Signing: SigningConfig{
			PrivateKey: homeSubpath(constants.KeysDir, constants.PrivateKeyFileName),
			PublicKey:  homeSubpath(constants.KeysDir, constants.PublicKeyFileName),
			KeyBits:    constants.DefaultKeyBits,
		},
		Certificates: CertificatesConfig{
			Dir:         homeSubpath(constants.CertificatesDir),
			LockTimeout: constants.LockTimeout,
		},
		Tools: ToolsConfig{
			Lsblk:          constants.ToolLsblk,
			Umount:         constants.ToolUmount,
			Hdparm:         constants.ToolHdparm,
			CommandTimeout: constants.CommandTimeout,
		},
		Logging: LoggingConfig{
			File:       homeSubpath(constants.LogsDir, constants.CLILogFileName),
			MaxSizeMB:  constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAgeDays: constants.LogMaxAgeDays,
			Compress:   constants.LogCompress,
		},
	}
}
