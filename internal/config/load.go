package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/wipecert/internal/errors"
)

// newViperInstance creates a Viper instance with the WIPECERT_ environment
// prefix, the dotted-key replacer and all defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("WIPECERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config, expands home
// directory references and validates the result.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	expandPaths(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (WIPECERT_* prefix)
//  2. Project config (.wipecert/config.yaml)
//  3. Global config (~/.wipecert/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("wipe.method", cfg.Wipe.Method).
		Int("wipe.passes", cfg.Wipe.Passes).
		Str("certificates.dir", cfg.Certificates.Dir).
		Msg("configuration loaded")

	return cfg, nil
}

// loadGlobalConfig reads ~/.wipecert/config.yaml when it exists.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil //nolint:nilerr // no home directory means no global config
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges .wipecert/config.yaml when it exists.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence.
//
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
		expandPaths(cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// projectConfigPath has higher priority than globalConfigPath.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults registers DefaultConfig on the Viper instance.
// Keys must match the mapstructure tags exactly; registering every key is
// also what makes AutomaticEnv see WIPECERT_* variables for it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("wipe.method", d.Wipe.Method)
	v.SetDefault("wipe.passes", d.Wipe.Passes)
	v.SetDefault("wipe.chunk_size", d.Wipe.ChunkSize)
	v.SetDefault("wipe.progress_interval", d.Wipe.ProgressInterval)
	v.SetDefault("wipe.unsupported_markers", d.Wipe.UnsupportedMarkers)

	v.SetDefault("signing.private_key", d.Signing.PrivateKey)
	v.SetDefault("signing.public_key", d.Signing.PublicKey)
	v.SetDefault("signing.key_bits", d.Signing.KeyBits)

	v.SetDefault("certificates.dir", d.Certificates.Dir)
	v.SetDefault("certificates.lock_timeout", d.Certificates.LockTimeout.String())

	v.SetDefault("tools.lsblk", d.Tools.Lsblk)
	v.SetDefault("tools.umount", d.Tools.Umount)
	v.SetDefault("tools.hdparm", d.Tools.Hdparm)
	v.SetDefault("tools.command_timeout", d.Tools.CommandTimeout.String())

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields cannot be overridden to false here since false is
// indistinguishable from unset. CLI flags handle those with Changed().
func applyOverrides(cfg, overrides *Config) {
	if overrides.Wipe.Method != "" {
		cfg.Wipe.Method = overrides.Wipe.Method
	}
	if overrides.Wipe.Passes != 0 {
		cfg.Wipe.Passes = overrides.Wipe.Passes
	}
	if overrides.Wipe.ChunkSize != 0 {
		cfg.Wipe.ChunkSize = overrides.Wipe.ChunkSize
	}
	if len(overrides.Wipe.UnsupportedMarkers) > 0 {
		cfg.Wipe.UnsupportedMarkers = overrides.Wipe.UnsupportedMarkers
	}

	if overrides.Signing.PrivateKey != "" {
		cfg.Signing.PrivateKey = overrides.Signing.PrivateKey
	}
	if overrides.Signing.PublicKey != "" {
		cfg.Signing.PublicKey = overrides.Signing.PublicKey
	}
	if overrides.Signing.KeyBits != 0 {
		cfg.Signing.KeyBits = overrides.Signing.KeyBits
	}

	if overrides.Certificates.Dir != "" {
		cfg.Certificates.Dir = overrides.Certificates.Dir
	}
}

// expandPaths resolves "~/" in every path-valued setting.
func expandPaths(cfg *Config) {
	cfg.Signing.PrivateKey = ExpandHome(cfg.Signing.PrivateKey)
	cfg.Signing.PublicKey = ExpandHome(cfg.Signing.PublicKey)
	cfg.Certificates.Dir = ExpandHome(cfg.Certificates.Dir)
	cfg.Logging.File = ExpandHome(cfg.Logging.File)
}

// viperDecoderOption returns the decoder options for Viper unmarshal:
// durations from strings, and comma-separated strings (from the
// environment) into slices.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
