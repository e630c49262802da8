package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/wipecert/internal/constants"
)

func TestHomeDir(t *testing.T) {
	t.Run("environment override", func(t *testing.T) {
		t.Setenv(constants.HomeEnvVar, "/var/lib/wipecert")

		dir, err := HomeDir()
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/wipecert", dir)
	})

	t.Run("under the user home", func(t *testing.T) {
		userHome := t.TempDir()
		t.Setenv(constants.HomeEnvVar, "")
		t.Setenv("HOME", userHome)

		dir, err := HomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userHome, ".wipecert"), dir)
	})
}

func TestConfigPaths(t *testing.T) {
	t.Setenv(constants.HomeEnvVar, "/opt/wc")

	global, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/opt/wc/config.yaml", global)

	assert.Equal(t, ".wipecert", ProjectConfigDir())
	assert.Equal(t, filepath.Join(".wipecert", "config.yaml"), ProjectConfigPath())
}

func TestExpandHome(t *testing.T) {
	userHome := t.TempDir()
	t.Setenv("HOME", userHome)

	tests := []struct {
		in   string
		want string
	}{
		{"~/keys/a.pem", filepath.Join(userHome, "keys", "a.pem")},
		{"~", userHome},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~other/path", "~other/path"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ExpandHome(tc.in))
		})
	}
}
