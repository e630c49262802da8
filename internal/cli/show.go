package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/tui"
)

type showOptions struct {
	publicKey string
	raw       bool
}

// showResult is the JSON shape of a shown certificate.
type showResult struct {
	Certificate certificate.Record `json:"certificate"`
	Verdict     string             `json:"verdict,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// AddShowCommand adds the show command to the root command.
func AddShowCommand(root *cobra.Command) {
	root.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show <certificate>",
		Short: "Render a certificate as a readable report",
		Long: `Render a certificate as a Markdown report.

The signature is checked against the public key when one is available and
the verdict is included in the report. Use --raw to print the Markdown
source, for example to attach it to a ticket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.publicKey, "public-key", "", "PEM public key (default from config)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the Markdown source")

	return cmd
}

func runShow(ctx context.Context, cmd *cobra.Command, file string, opts *showOptions) error {
	out, format := outputFor(cmd)
	cfg := configFromContext(ctx)
	svc := newServices(cfg, GetLogger())
	logger := GetLogger()

	data, err := svc.Store.Load(ctx, file)
	if err != nil {
		return err
	}

	record, err := certificate.Parse(data)
	if err != nil {
		return errors.Wrapf(err, "cannot show %s", file)
	}

	keyPath := cfg.Signing.PublicKey
	if opts.publicKey != "" {
		keyPath = opts.publicKey
	}

	var verdict string
	var verifyErr error
	publicKeyPEM, keyErr := readPublicKey(keyPath)
	switch {
	case keyErr == nil:
		res := certificate.VerifyWithKey(ctx, data, publicKeyPEM)
		verdict = res.Status.String()
		verifyErr = res.Err
	case opts.publicKey != "" || !stderrors.Is(keyErr, errors.ErrKeyNotFound):
		return keyErr
	default:
		logger.Debug().Str("path", keyPath).Msg("no public key, showing certificate unverified")
	}

	if format == OutputJSON {
		res := showResult{Certificate: record, Verdict: verdict}
		if verifyErr != nil {
			res.Error = verifyErr.Error()
		}
		return out.JSON(res)
	}

	md := certificate.Markdown(record, verdict)
	w := cmd.OutOrStdout()
	if opts.raw {
		_, _ = fmt.Fprint(w, md)
		return nil
	}

	rendered, err := tui.RenderMarkdown(md, tui.TerminalWidth() > 0)
	if err != nil {
		logger.Debug().Err(err).Msg("markdown rendering failed, printing source")
		rendered = md
	}
	_, _ = fmt.Fprint(w, rendered)

	if verifyErr != nil {
		out.Warning(errors.UserMessage(verifyErr))
		logger.Debug().Err(verifyErr).Str("file", file).Msg("certificate did not verify")
	}
	return nil
}
