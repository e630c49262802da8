package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	err := Validate(nil)
	require.ErrorIs(t, err, wcerrors.ErrConfigNil)
}

func TestValidate_DefaultConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		msg     string
	}{
		{
			name:    "unknown method",
			mutate:  func(c *Config) { c.Wipe.Method = "shred" },
			wantErr: wcerrors.ErrConfigInvalidWipe,
			msg:     `wipe.method must be overwrite or purge, got "shred"`,
		},
		{
			name:   "method is case insensitive",
			mutate: func(c *Config) { c.Wipe.Method = " Purge " },
		},
		{
			name:    "zero passes",
			mutate:  func(c *Config) { c.Wipe.Passes = 0 },
			wantErr: wcerrors.ErrConfigInvalidWipe,
			msg:     "wipe.passes must be between 1 and 35, got 0",
		},
		{
			name:   "single pass",
			mutate: func(c *Config) { c.Wipe.Passes = 1 },
		},
		{
			name:   "maximum passes",
			mutate: func(c *Config) { c.Wipe.Passes = MaxPasses },
		},
		{
			name:    "too many passes",
			mutate:  func(c *Config) { c.Wipe.Passes = MaxPasses + 1 },
			wantErr: wcerrors.ErrConfigInvalidWipe,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Wipe.ChunkSize = 0 },
			wantErr: wcerrors.ErrConfigInvalidWipe,
		},
		{
			name:    "negative progress interval",
			mutate:  func(c *Config) { c.Wipe.ProgressInterval = -1 },
			wantErr: wcerrors.ErrConfigInvalidWipe,
		},
		{
			name:    "weak key size",
			mutate:  func(c *Config) { c.Signing.KeyBits = 1024 },
			wantErr: wcerrors.ErrConfigInvalidSigning,
			msg:     "signing.key_bits must be at least 2048, got 1024",
		},
		{
			name:    "empty certificate dir",
			mutate:  func(c *Config) { c.Certificates.Dir = "  " },
			wantErr: wcerrors.ErrConfigInvalidCertificates,
		},
		{
			name:    "zero lock timeout",
			mutate:  func(c *Config) { c.Certificates.LockTimeout = 0 },
			wantErr: wcerrors.ErrConfigInvalidCertificates,
		},
		{
			name:    "empty hdparm",
			mutate:  func(c *Config) { c.Tools.Hdparm = "" },
			wantErr: wcerrors.ErrConfigInvalidTools,
			msg:     "tools.hdparm must not be empty",
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Tools.CommandTimeout = 0 },
			wantErr: wcerrors.ErrConfigInvalidTools,
		},
		{
			name:   "short command timeout",
			mutate: func(c *Config) { c.Tools.CommandTimeout = time.Second },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			if tc.msg != "" {
				assert.Contains(t, err.Error(), tc.msg)
			}
		})
	}
}

func TestValidate_FirstFailureWins(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Wipe.Passes = 0
	cfg.Tools.Lsblk = ""

	require.ErrorIs(t, Validate(cfg), wcerrors.ErrConfigInvalidWipe)
}
