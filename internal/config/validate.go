package config

import (
	"strings"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/errors"
)

// MaxPasses bounds the overwrite pass count, in config and on the command line.
const MaxPasses = 35

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - wipe.method must be overwrite or purge
//   - wipe.passes must be between 1 and 35
//   - wipe.chunk_size and wipe.progress_interval must be positive
//   - signing.key_bits must be at least 2048
//   - certificates.dir must not be empty, lock_timeout must be positive
//   - every tool must be named and command_timeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateWipeConfig(&cfg.Wipe); err != nil {
		return err
	}
	if err := validateSigningConfig(&cfg.Signing); err != nil {
		return err
	}
	if err := validateCertificatesConfig(&cfg.Certificates); err != nil {
		return err
	}
	return validateToolsConfig(&cfg.Tools)
}

func validateWipeConfig(cfg *WipeConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Method)) {
	case "overwrite", "purge":
	default:
		return errors.Wrapf(errors.ErrConfigInvalidWipe,
			"wipe.method must be overwrite or purge, got %q", cfg.Method)
	}

	if cfg.Passes < 1 || cfg.Passes > MaxPasses {
		return errors.Wrapf(errors.ErrConfigInvalidWipe,
			"wipe.passes must be between 1 and %d, got %d", MaxPasses, cfg.Passes)
	}

	if cfg.ChunkSize <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWipe,
			"wipe.chunk_size must be positive, got %d", cfg.ChunkSize)
	}

	if cfg.ProgressInterval <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWipe,
			"wipe.progress_interval must be positive, got %d", cfg.ProgressInterval)
	}

	return nil
}

func validateSigningConfig(cfg *SigningConfig) error {
	if cfg.KeyBits < constants.MinKeyBits {
		return errors.Wrapf(errors.ErrConfigInvalidSigning,
			"signing.key_bits must be at least %d, got %d", constants.MinKeyBits, cfg.KeyBits)
	}
	return nil
}

func validateCertificatesConfig(cfg *CertificatesConfig) error {
	if strings.TrimSpace(cfg.Dir) == "" {
		return errors.Wrap(errors.ErrConfigInvalidCertificates,
			"certificates.dir must not be empty")
	}

	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCertificates,
			"certificates.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}

	return nil
}

func validateToolsConfig(cfg *ToolsConfig) error {
	tools := []struct{ key, value string }{
		{"tools.lsblk", cfg.Lsblk},
		{"tools.umount", cfg.Umount},
		{"tools.hdparm", cfg.Hdparm},
	}
	for _, tool := range tools {
		if strings.TrimSpace(tool.value) == "" {
			return errors.Wrapf(errors.ErrConfigInvalidTools, "%s must not be empty", tool.key)
		}
	}

	if cfg.CommandTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTools,
			"tools.command_timeout must be positive, got %s", cfg.CommandTimeout)
	}

	return nil
}
