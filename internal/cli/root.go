// Package cli provides the command-line interface for wipecert.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed. Before that it returns a zero-value logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// terminalCheck reports whether stdin is interactive. Tests replace it.
var terminalCheck = isTerminal //nolint:gochecknoglobals // test injection point

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// configKey carries the loaded *config.Config on the command context.
type configKey struct{}

// configFromContext returns the configuration loaded by the root command,
// or the defaults when none was attached.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// newRootCmd creates and returns the root command for the wipecert CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "wipecert",
		Short: "Sanitize drives and issue signed erasure certificates",
		Long: `wipecert erases block devices and proves it.

Every wipe, successful or not, produces a certificate signed with your
RSA key. Anyone holding the public key can verify it later.

Methods:
  • overwrite  multi-pass overwrite (random, then zeros) - NIST Clear
  • purge      ATA firmware secure erase - NIST Purge`,
		Version: formatVersion(info),
		// Run displays help when the root command is invoked without subcommands.
		// This ensures PersistentPreRunE is called for flag validation.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyBoundFlags(v, cmd, flags)

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			ctx := cmd.Context()
			cfg, cfgErr := config.Load(ctx)

			logCfg := config.DefaultConfig().Logging
			if cfgErr == nil {
				logCfg = cfg.Logging
			}

			logger := InitLogger(flags.Verbose, flags.Quiet, logCfg)
			globalLoggerMu.Lock()
			globalLogger = logger
			globalLoggerMu.Unlock()

			if cfgErr != nil {
				return cfgErr
			}

			ctx = logger.WithContext(ctx)
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
		// Errors are rendered by Execute through the tui output.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddDrivesCommand(cmd)
	AddWipeCommand(cmd)
	AddVerifyCommand(cmd)
	AddShowCommand(cmd)
	AddListCommand(cmd)
	AddKeysCommand(cmd)
	AddConfigCommand(cmd)
	AddDoctorCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// A returned error has already been shown to the user.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	reportError(cmd.OutOrStdout(), cmd.ErrOrStderr(), flags.Output, err)
	return err
}

// reportError renders err with its suggested action. JSON errors go to
// stdout next to the rest of the JSON stream; text errors go to stderr.
// Errors already emitted as JSON are skipped.
func reportError(stdout, stderr io.Writer, format string, err error) {
	if err == nil || stderrors.Is(err, errors.ErrJSONErrorOutput) {
		return
	}
	if format == OutputJSON {
		tui.NewOutput(stdout, tui.FormatJSON).Error(tui.FromError(err))
		return
	}
	tui.NewOutput(stderr, tui.FormatText).Error(tui.FromError(err))
}

// outputFor returns the output for cmd in the selected format.
func outputFor(cmd *cobra.Command) (tui.Output, string) {
	format := OutputText
	if f := cmd.Flag("output"); f != nil {
		format = f.Value.String()
	}
	return tui.NewOutput(cmd.OutOrStdout(), format), format
}
