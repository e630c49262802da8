// Package config provides configuration management for wipecert with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (WIPECERT_* prefix)
//  3. Project config (.wipecert/config.yaml)
//  4. Global config (~/.wipecert/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for wipecert.
type Config struct {
	// Wipe contains settings for the erasure engine.
	Wipe WipeConfig `yaml:"wipe" mapstructure:"wipe"`

	// Signing contains the key locations used to sign and verify certificates.
	Signing SigningConfig `yaml:"signing" mapstructure:"signing"`

	// Certificates contains settings for the certificate store.
	Certificates CertificatesConfig `yaml:"certificates" mapstructure:"certificates"`

	// Tools contains the external utilities wipecert shells out to.
	Tools ToolsConfig `yaml:"tools" mapstructure:"tools"`

	// Logging contains settings for the rotating log file.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// WipeConfig contains settings for the erasure engine.
type WipeConfig struct {
	// Method is the default sanitize method: "overwrite" or "purge".
	// Default: "overwrite"
	Method string `yaml:"method" mapstructure:"method"`

	// Passes is the number of overwrite passes. Pass 1 writes random data,
	// every later pass writes zeros.
	// Default: 3
	Passes int `yaml:"passes" mapstructure:"passes"`

	// ChunkSize is the size in bytes of each write.
	// Default: 1 MiB
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`

	// ProgressInterval is the number of bytes between progress updates.
	// Default: 10 MiB
	ProgressInterval int64 `yaml:"progress_interval" mapstructure:"progress_interval"`

	// UnsupportedMarkers are device path substrings that identify devices
	// refusing the ATA security commands.
	// Default: ["nvme"]
	UnsupportedMarkers []string `yaml:"unsupported_markers" mapstructure:"unsupported_markers"`
}

// SigningConfig contains the key locations used to sign and verify certificates.
type SigningConfig struct {
	// PrivateKey is the PEM private key used to sign new certificates.
	// Default: ~/.wipecert/keys/private_key.pem
	PrivateKey string `yaml:"private_key" mapstructure:"private_key"`

	// PublicKey is the PEM public key used by verify when --public-key is not given.
	// Default: ~/.wipecert/keys/public_key.pem
	PublicKey string `yaml:"public_key" mapstructure:"public_key"`

	// KeyBits is the RSA modulus size for `keys generate`.
	// Default: 4096, minimum 2048
	KeyBits int `yaml:"key_bits" mapstructure:"key_bits"`
}

// CertificatesConfig contains settings for the certificate store.
type CertificatesConfig struct {
	// Dir is where signed certificates are written.
	// Default: ~/.wipecert/certificates
	Dir string `yaml:"dir" mapstructure:"dir"`

	// LockTimeout bounds the wait for the store lock.
	// Default: 5s
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// ToolsConfig contains the external utilities wipecert shells out to.
// Values are command names resolved on PATH or absolute paths.
type ToolsConfig struct {
	Lsblk  string `yaml:"lsblk" mapstructure:"lsblk"`
	Umount string `yaml:"umount" mapstructure:"umount"`
	Hdparm string `yaml:"hdparm" mapstructure:"hdparm"`

	// CommandTimeout bounds informational commands such as lsblk.
	// Firmware commands are never bounded.
	// Default: 30s
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
}

// LoggingConfig contains settings for the rotating log file.
type LoggingConfig struct {
	// File is the log file path. Empty disables file logging.
	// Default: ~/.wipecert/logs/wipecert.log
	File string `yaml:"file" mapstructure:"file"`

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the retention of rotated files.
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress" mapstructure:"compress"`
}
