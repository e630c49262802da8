package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/tui"
)

// maxConcurrentVerifications bounds the verify worker pool.
const maxConcurrentVerifications = 8

// verifyReport is the result for one certificate file.
type verifyReport struct {
	File     string `json:"file"`
	Status   string `json:"status"`
	ReportID string `json:"report_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// verifyStatusError marks a file that could not be read or a verification
// that did not complete.
var verifyStatusError = certificate.StatusError.String()

type verifyOptions struct {
	publicKey string
}

// AddVerifyCommand adds the verify command to the root command.
func AddVerifyCommand(root *cobra.Command) {
	root.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <certificate>...",
		Short: "Verify certificate signatures",
		Long: `Check that each certificate is well formed and that its signature
matches its content under the public key.

Each file is reported as Valid, Invalid (content or signature altered) or
Malformed (not a certificate, or unsigned). Relative names that do not
exist are looked up in the certificate directory.`,
		Example: `  wipecert verify WIPE-S1234-1736899200.json
  wipecert verify --public-key ./public_key.pem ~/.wipecert/certificates/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.publicKey, "public-key", "", "PEM public key (default from config)")

	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, files []string, opts *verifyOptions) error {
	out, format := outputFor(cmd)
	cfg := configFromContext(ctx)
	svc := newServices(cfg, GetLogger())

	keyPath := cfg.Signing.PublicKey
	if opts.publicKey != "" {
		keyPath = opts.publicKey
	}
	publicKeyPEM, err := readPublicKey(keyPath)
	if err != nil {
		return err
	}

	reports, err := verifyFiles(ctx, svc.Store, files, publicKeyPEM)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if r.Status != certificate.StatusValid.String() {
			failed++
		}
	}

	if format == OutputJSON {
		if err := out.JSON(reports); err != nil {
			return err
		}
		if failed > 0 {
			return errors.ErrJSONErrorOutput
		}
		return nil
	}

	printVerifyReports(cmd, reports)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d certificate(s)", errors.ErrVerificationFailed, failed, len(reports))
	}
	out.Success(fmt.Sprintf("%d certificate(s) verified.", len(reports)))
	return nil
}

// verifyFiles checks each file concurrently. Reports keep the input order.
func verifyFiles(ctx context.Context, store certificate.Store, files []string, publicKeyPEM []byte) ([]verifyReport, error) {
	reports := make([]verifyReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentVerifications)
	for i, file := range files {
		g.Go(func() error {
			reports[i] = verifyFile(gctx, store, file, publicKeyPEM)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func verifyFile(ctx context.Context, store certificate.Store, file string, publicKeyPEM []byte) verifyReport {
	report := verifyReport{File: file}

	data, err := store.Load(ctx, file)
	if err != nil {
		report.Status = verifyStatusError
		report.Error = err.Error()
		return report
	}

	res := certificate.VerifyWithKey(ctx, data, publicKeyPEM)
	report.Status = res.Status.String()
	if res.Record != nil {
		report.ReportID = res.Record.ReportID
	}
	if res.Err != nil {
		report.Error = res.Err.Error()
	}
	return report
}

func printVerifyReports(cmd *cobra.Command, reports []verifyReport) {
	w := cmd.OutOrStdout()
	for _, r := range reports {
		line := fmt.Sprintf("%s  %s", tui.FormatVerdict(r.Status), r.File)
		if r.ReportID != "" {
			line += fmt.Sprintf(" (%s)", r.ReportID)
		}
		_, _ = fmt.Fprintln(w, line)
		if r.Error != "" {
			_, _ = fmt.Fprintln(w, "    "+r.Error)
		}
	}
}

// readPublicKey reads the PEM public key. Parsing happens per certificate so
// a bad key reports every file as Malformed.
func readPublicKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied key path
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", errors.ErrKeyNotFound, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read public key %s", path)
	}
	return data, nil
}
