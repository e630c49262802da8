package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/tui"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource is one effective setting and its origin.
type ConfigValueWithSource struct {
	Key    string       `json:"key" yaml:"key"`
	Value  any          `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// AddConfigCommand adds the config command and its subcommands.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
		Long: `Inspect and initialize wipecert configuration.

Settings are read from, highest precedence first:
  WIPECERT_* environment variables
  .wipecert/config.yaml in the current directory
  ~/.wipecert/config.yaml (or $WIPECERT_HOME/config.yaml)
  built-in defaults`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	root.AddCommand(cmd)
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration and where each value comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, format := outputFor(cmd)
			entries := annotateConfig(configFromContext(cmd.Context()))
			if format == OutputJSON {
				return out.JSON(entries)
			}
			writeAnnotatedConfig(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	var project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ProjectConfigPath()
			if !project {
				globalPath, err := config.GlobalConfigPath()
				if err != nil {
					return err
				}
				path = globalPath
			}
			return runConfigInit(cmd.Context(), cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&project, "project", false, "write .wipecert/config.yaml in the current directory")

	return cmd
}

func runConfigInit(ctx context.Context, cmd *cobra.Command, path string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, _ := outputFor(cmd)

	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewExitCode2Error(fmt.Errorf("%w: %s exists, use --force to replace it", errors.ErrInvalidArgument, path))
	}

	data, err := defaultConfigYAML()
	if err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create configuration directory")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write configuration")
	}

	logger := GetLogger()
	logger.Info().Str("path", path).Msg("configuration written")
	out.Success("Configuration written to " + path)
	return nil
}

// defaultConfigYAML renders the defaults with durations in their
// human form ("5s") rather than nanoseconds.
func defaultConfigYAML() ([]byte, error) {
	cfg := config.DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc["certificates"]["lock_timeout"] = cfg.Certificates.LockTimeout.String()
	doc["tools"]["command_timeout"] = cfg.Tools.CommandTimeout.String()
	return yaml.Marshal(doc)
}

// annotateConfig lists every effective setting with its source.
func annotateConfig(cfg *config.Config) []ConfigValueWithSource {
	globalKeys := configFileKeys(globalConfigPathOrEmpty())
	projectKeys := configFileKeys(config.ProjectConfigPath())

	values := []struct {
		key   string
		value any
	}{
		{"wipe.method", cfg.Wipe.Method},
		{"wipe.passes", cfg.Wipe.Passes},
		{"wipe.chunk_size", cfg.Wipe.ChunkSize},
		{"wipe.progress_interval", cfg.Wipe.ProgressInterval},
		{"wipe.unsupported_markers", cfg.Wipe.UnsupportedMarkers},
		{"signing.private_key", cfg.Signing.PrivateKey},
		{"signing.public_key", cfg.Signing.PublicKey},
		{"signing.key_bits", cfg.Signing.KeyBits},
		{"certificates.dir", cfg.Certificates.Dir},
		{"certificates.lock_timeout", cfg.Certificates.LockTimeout.String()},
		{"tools.lsblk", cfg.Tools.Lsblk},
		{"tools.umount", cfg.Tools.Umount},
		{"tools.hdparm", cfg.Tools.Hdparm},
		{"tools.command_timeout", cfg.Tools.CommandTimeout.String()},
		{"logging.file", cfg.Logging.File},
		{"logging.max_size_mb", cfg.Logging.MaxSizeMB},
		{"logging.max_backups", cfg.Logging.MaxBackups},
		{"logging.max_age_days", cfg.Logging.MaxAgeDays},
		{"logging.compress", cfg.Logging.Compress},
	}

	entries := make([]ConfigValueWithSource, len(values))
	for i, v := range values {
		entries[i] = ConfigValueWithSource{
			Key:    v.key,
			Value:  v.value,
			Source: determineSource(v.key, globalKeys, projectKeys),
		}
	}
	return entries
}

func globalConfigPathOrEmpty() string {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return ""
	}
	return path
}

// configFileKeys returns the dotted keys set in a YAML config file.
// A missing or unreadable file yields nil.
func configFileKeys(path string) map[string]bool {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // config file path
	if err != nil {
		return nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	keys := make(map[string]bool)
	flattenKeys("", doc, keys)
	return keys
}

func flattenKeys(prefix string, m map[string]any, keys map[string]bool) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenKeys(key, nested, keys)
			continue
		}
		keys[key] = true
	}
}

// determineSource reports where the effective value of key came from.
func determineSource(key string, globalKeys, projectKeys map[string]bool) ConfigSource {
	envKey := "WIPECERT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(envKey); ok {
		return SourceEnv
	}
	if projectKeys[key] {
		return SourceProject
	}
	if globalKeys[key] {
		return SourceGlobal
	}
	return SourceDefault
}

func writeAnnotatedConfig(w io.Writer, entries []ConfigValueWithSource) {
	keyStyle := lipgloss.NewStyle().Foreground(tui.ColorPrimary)
	sectionStyle := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(tui.ColorMuted)
	sourceStyles := map[ConfigSource]lipgloss.Style{
		SourceEnv:     lipgloss.NewStyle().Foreground(tui.ColorError),
		SourceProject: lipgloss.NewStyle().Foreground(tui.ColorWarning),
		SourceGlobal:  lipgloss.NewStyle().Foreground(tui.ColorSuccess),
		SourceDefault: dim,
	}

	_, _ = fmt.Fprintln(w, dim.Render("Sources: env > project > global > default"))

	section := ""
	for _, e := range entries {
		sec, name, _ := strings.Cut(e.Key, ".")
		if sec != section {
			section = sec
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, sectionStyle.Render(sec+":"))
		}
		_, _ = fmt.Fprintf(w, "  %s: %v  %s\n",
			keyStyle.Render(name),
			e.Value,
			sourceStyles[e.Source].Render("("+string(e.Source)+")"))
	}
}
