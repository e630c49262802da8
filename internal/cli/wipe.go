package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/ctxutil"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/logging"
	"github.com/mrz1836/wipecert/internal/signal"
	"github.com/mrz1836/wipecert/internal/tui"
)

// progressBarWidth is the width of the live progress bar.
const progressBarWidth = 30

// Interactive prompts. Tests replace them.
//
//nolint:gochecknoglobals // test injection points
var (
	confirmErase = tui.ConfirmErase
	selectDrive  = tui.Select
)

type wipeOptions struct {
	method string
	passes int
	yes    bool
}

// wipeResult is the JSON shape of a finished wipe.
type wipeResult struct {
	Device          string `json:"device"`
	Method          string `json:"method"`
	Passes          int    `json:"passes,omitempty"`
	Status          string `json:"status"`
	Detail          string `json:"detail"`
	ErrorKind       string `json:"error_kind,omitempty"`
	PassesCompleted int    `json:"passes_completed,omitempty"`
	BytesPerPass    int64  `json:"bytes_per_pass,omitempty"`
	ReportID        string `json:"report_id"`
	Certificate     string `json:"certificate"`
}

// AddWipeCommand adds the wipe command to the root command.
func AddWipeCommand(root *cobra.Command) {
	root.AddCommand(newWipeCmd())
}

func newWipeCmd() *cobra.Command {
	opts := &wipeOptions{}

	cmd := &cobra.Command{
		Use:   "wipe [device]",
		Short: "Erase a drive and write a signed certificate",
		Long: `Erase a drive with the chosen method and write a signed certificate.

The certificate is written whether or not the wipe succeeds. Without a
device argument an interactive picker lists the attached drives.

Unless --yes is given, you are asked to confirm and then to type ERASE.`,
		Example: `  sudo wipecert wipe /dev/sdb
  sudo wipecert wipe /dev/sdb --method purge
  sudo wipecert wipe /dev/sdb --passes 1 --yes -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runWipe(cmd.Context(), cmd, target, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "wipe method: overwrite or purge (default from config)")
	cmd.Flags().IntVarP(&opts.passes, "passes", "p", 0, "overwrite passes (default from config)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip confirmation prompts")

	return cmd
}

func runWipe(ctx context.Context, cmd *cobra.Command, target string, opts *wipeOptions) error {
	out, format := outputFor(cmd)
	logger := GetLogger()
	cfg := configFromContext(ctx)

	method, passes, err := resolveWipeSettings(cfg.Wipe, opts)
	if err != nil {
		return errors.NewExitCode2Error(err)
	}

	svc := newServices(cfg, logger)

	drives, err := svc.Drives(ctx)
	if err != nil {
		// The wipe can still run; the certificate then carries N/A attributes.
		logger.Warn().Err(err).Msg("drive enumeration failed")
	}

	if target == "" {
		target, err = chooseDrive(drives)
		if err != nil {
			return handleWipePromptError(out, err)
		}
	}
	drive := device.Lookup(drives, target)

	// Load the key before anything is erased so a missing key never leaves
	// a wiped drive without a certificate.
	signer, err := svc.Keys.NewSigner(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load signing key")
	}

	if !opts.yes {
		if !terminalCheck() {
			return errors.NewExitCode2Error(fmt.Errorf("wipe of %s requires confirmation: %w", target, errors.ErrNonInteractiveMode))
		}
		confirmed, promptErr := confirmErase(target, driveSummary(drive, method, passes))
		if promptErr != nil {
			return handleWipePromptError(out, promptErr)
		}
		if !confirmed {
			out.Info("Wipe canceled. No data was changed.")
			return nil
		}
	}

	logger.Info().
		Str("device", target).
		Str("method", method.String()).
		Int("passes", passes).
		Msg("wipe started")

	outcome := runEngine(ctx, cmd, svc.Engine, target, method, passes, format, logger)

	logEvent := logger.Info()
	if !outcome.Success {
		logEvent = logger.Error().Str("error_kind", outcome.Kind.String())
	}
	logEvent.Str("device", target).Str("detail", logging.SafeValue("detail", outcome.Detail)).Msg("wipe finished")

	// Certificates are persisted even when the wipe was interrupted.
	persistCtx := ctxutil.Detached(ctx)
	record := svc.Builder.Build(drive, method, outcome)
	signed, err := certificate.Sign(persistCtx, record, signer)
	if err != nil {
		return errors.Wrap(err, "failed to sign certificate")
	}
	path, err := svc.Store.Save(persistCtx, signed)
	if err != nil {
		// The signature cannot be reproduced once this process exits.
		logger.Error().Err(err).Str("report_id", signed.ReportID).Msg("certificate not stored, writing it to stderr")
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "signed certificate could not be stored:\n%s\n", certificate.Marshal(signed))
		return errors.Wrap(err, "failed to store certificate")
	}
	logger.Info().Str("report_id", signed.ReportID).Str("path", path).Msg("certificate written")

	if format == OutputJSON {
		if jsonErr := out.JSON(newWipeResult(target, method, passes, outcome, signed, path)); jsonErr != nil {
			return jsonErr
		}
		if !outcome.Success {
			return errors.ErrJSONErrorOutput
		}
		return nil
	}

	if outcome.Success {
		out.Success(fmt.Sprintf("%s: %s", target, outcome.Detail))
	}
	out.Info(fmt.Sprintf("Certificate %s written to %s", signed.ReportID, path))

	if !outcome.Success {
		return wipeFailure(outcome)
	}
	return nil
}

// wipeFailure carries the outcome kind so the error shows a matching suggestion.
func wipeFailure(outcome domain.WipeOutcome) error {
	if kindErr := outcome.Kind.Err(); kindErr != nil && !stderrors.Is(kindErr, errors.ErrWipeFailed) {
		return fmt.Errorf("%w: %s: %w", errors.ErrWipeFailed, outcome.Detail, kindErr)
	}
	return fmt.Errorf("%w: %s", errors.ErrWipeFailed, outcome.Detail)
}

// runEngine starts the wipe under a signal handler and waits for its outcome.
func runEngine(ctx context.Context, cmd *cobra.Command, engine Wiper, target string, method domain.WipeMethod, passes int, format string, logger zerolog.Logger) domain.WipeOutcome {
	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	var report domain.ProgressFunc
	var progress *tui.WipeProgress
	if format == OutputText {
		progress = tui.NewWipeProgress(cmd.ErrOrStderr(), terminalCheck(), progressBarWidth)
		report = progress.Report
	}

	done := engine.Start(handler.Context(), target, method, passes, report)
	go func() {
		select {
		case <-handler.Interrupted():
			logger.Warn().Str("signal", handler.Signal().String()).Msg("interrupt received, stopping wipe")
		case <-handler.Context().Done():
		}
	}()

	outcome := <-done
	if progress != nil {
		progress.Finish()
	}
	return outcome
}

// resolveWipeSettings applies flag overrides on top of the configured defaults.
func resolveWipeSettings(cfg config.WipeConfig, opts *wipeOptions) (domain.WipeMethod, int, error) {
	name := cfg.Method
	if opts.method != "" {
		name = opts.method
	}
	method, err := domain.ParseWipeMethod(name)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", errors.ErrInvalidArgument, err)
	}

	passes := cfg.Passes
	if opts.passes != 0 {
		passes = opts.passes
	}
	if method == domain.MethodOverwrite && (passes < 1 || passes > config.MaxPasses) {
		return "", 0, fmt.Errorf("%w: got %d, maximum is %d", errors.ErrInvalidPassCount, passes, config.MaxPasses)
	}
	return method, passes, nil
}

// chooseDrive lets the user pick a drive when no device was named.
func chooseDrive(drives []domain.DriveDescriptor) (string, error) {
	if !terminalCheck() {
		return "", errors.NewExitCode2Error(fmt.Errorf("%w: a device path is required in non-interactive mode", errors.ErrInvalidArgument))
	}

	options := make([]tui.Option, len(drives))
	for i, d := range drives {
		options[i] = tui.Option{
			Label:       d.Path,
			Description: fmt.Sprintf("%s, %s, serial %s", d.Model, d.Size, d.Serial),
			Value:       d.Path,
		}
	}
	return selectDrive("Select the drive to wipe", options)
}

// handleWipePromptError turns a canceled prompt into a clean exit.
func handleWipePromptError(out tui.Output, err error) error {
	if stderrors.Is(err, errors.ErrMenuCanceled) {
		out.Info("Wipe canceled. No data was changed.")
		return nil
	}
	return err
}

func driveSummary(d domain.DriveDescriptor, method domain.WipeMethod, passes int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model: %s  Size: %s  Serial: %s\n", d.Model, d.Size, d.Serial)
	if method == domain.MethodOverwrite {
		fmt.Fprintf(&sb, "Method: %s (%s, %d passes)", method, method.Tier(), passes)
	} else {
		fmt.Fprintf(&sb, "Method: %s (%s)", method, method.Tier())
	}
	return sb.String()
}

func newWipeResult(target string, method domain.WipeMethod, passes int, outcome domain.WipeOutcome, r certificate.Record, path string) wipeResult {
	res := wipeResult{
		Device:          target,
		Method:          method.String(),
		Status:          r.WipeDetails.Status,
		Detail:          outcome.Detail,
		PassesCompleted: outcome.PassesCompleted,
		BytesPerPass:    outcome.BytesPerPass,
		ReportID:        r.ReportID,
		Certificate:     path,
	}
	if method == domain.MethodOverwrite {
		res.Passes = passes
	}
	if !outcome.Success {
		res.ErrorKind = outcome.Kind.String()
	}
	return res
}
