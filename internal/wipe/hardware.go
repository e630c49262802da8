package wipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/ctxutil"
	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/domain"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

// HardwareErase sets a transient ATA security credential and issues the
// secure-erase command with it. Devices matching an unsupported marker are
// refused before any firmware command runs; there is no fallback to
// overwrite.
//
// Once the credential is set the command pair runs to completion even if
// ctx is canceled. Failures are never retried: a frozen drive needs a power
// cycle first.
func (e *Engine) HardwareErase(ctx context.Context, path string, progress domain.ProgressFunc) domain.WipeOutcome {
	if marker, ok := e.unsupported(path); ok {
		return domain.Failed(domain.KindUnsupportedMethod, fmt.Sprintf(
			"Hardware secure erase is not supported for %s devices (%s). Use the overwrite method.", marker, path))
	}
	if outcome, ok := e.preconditions(path); !ok {
		return outcome
	}

	release, outcome, ok := e.begin(path)
	if !ok {
		return outcome
	}
	defer release()

	logger := e.logger.With().Str("device", path).Str("method", domain.MethodPurge.String()).Logger()

	e.report(progress, "Attempting Hardware Secure Erase...", 0)
	if err := ctxutil.Canceled(ctx); err != nil {
		return domain.Failed(domain.KindCanceled, "Hardware secure erase canceled before any command was issued.")
	}

	firmwareCtx := ctxutil.Detached(ctx)
	credential := e.credential()

	e.report(progress, "Setting security password...", 25)
	logger.Info().Msg("setting transient security credential")
	if err := e.firmware.SetSecurityCredential(firmwareCtx, path, credential); err != nil {
		logger.Error().Err(err).Msg("security-set-pass failed")
		return firmwareFailure(err, false)
	}

	e.report(progress, "Issuing secure erase command...", 50)
	logger.Info().Msg("issuing secure erase")
	if err := e.firmware.IssueSecureErase(firmwareCtx, path, credential); err != nil {
		logger.Error().Err(err).Msg("security-erase failed")
		return firmwareFailure(err, true)
	}

	e.report(progress, "Hardware erase command sent.", 100)
	logger.Info().Msg("hardware secure erase complete")
	return domain.Succeeded(constants.PurgeSuccessDetail, 0, 0)
}

func (e *Engine) unsupported(path string) (string, bool) {
	lower := strings.ToLower(path)
	for _, marker := range e.cfg.UnsupportedMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return marker, true
		}
	}
	return "", false
}

// firmwareFailure maps a firmware error to an outcome. credentialSet notes
// that the drive may still have security enabled.
func firmwareFailure(err error, credentialSet bool) domain.WipeOutcome {
	if errors.Is(err, wcerrors.ErrToolUnavailable) {
		return domain.Failed(domain.KindToolUnavailable, "Command not found (hdparm). Is the 'hdparm' package installed?")
	}

	diagnostic := err.Error()
	var cmdErr *device.CommandError
	if errors.As(err, &cmdErr) {
		diagnostic = cmdErr.Diagnostic()
	}

	detail := "Hardware command failed. Drive may not support it or is frozen.\n\nSTDERR:\n" + diagnostic
	if credentialSet {
		detail += "\n\nDrive security may remain enabled; unlock it with the master password before reuse."
	}
	return domain.Failed(domain.KindCommandFailed, detail)
}
