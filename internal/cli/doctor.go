package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/config"
	"github.com/mrz1836/wipecert/internal/errors"
)

// doctorReport is the JSON shape of the preflight check.
type doctorReport struct {
	Tools       []config.Tool `json:"tools"`
	Privileged  bool          `json:"privileged"`
	SigningKey  string        `json:"signing_key"`
	KeyPresent  bool          `json:"signing_key_present"`
	PublicKey   string        `json:"public_key"`
	PublicFound bool          `json:"public_key_present"`
	Ready       bool          `json:"ready"`
}

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check that this host is ready to wipe and sign",
		Long: `Check the external tools, privileges and keys wipecert needs.

lsblk and umount are required for every wipe. hdparm is only needed for
--method purge.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	})
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out, format := outputFor(cmd)
	cfg := configFromContext(ctx)
	svc := newServices(cfg, GetLogger())

	result, err := svc.Detector.Detect(ctx)
	if err != nil {
		return err
	}

	report := doctorReport{
		Tools:       result.Tools,
		Privileged:  svc.Privileged(),
		SigningKey:  cfg.Signing.PrivateKey,
		KeyPresent:  svc.Keys.Exists(),
		PublicKey:   cfg.Signing.PublicKey,
		PublicFound: fileExists(cfg.Signing.PublicKey),
	}
	report.Ready = !result.HasMissingRequired && report.KeyPresent

	if format == OutputJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
		if !report.Ready {
			return errors.ErrJSONErrorOutput
		}
		return nil
	}

	rows := make([][]string, len(result.Tools))
	for i, t := range result.Tools {
		required := "optional"
		if t.Required {
			required = "required"
		}
		rows[i] = []string{t.Name, t.Status.String(), orNA(t.CurrentVersion), required, t.UsedFor}
	}
	out.Table([]string{"TOOL", "STATUS", "VERSION", "NEED", "USED FOR"}, rows)

	if report.Privileged {
		out.Success("Running with root privileges")
	} else {
		out.Warning("Not running as root; wipes will fail without sudo")
	}
	if report.KeyPresent {
		out.Success("Signing key: " + report.SigningKey)
	} else {
		out.Warning("No signing key at " + report.SigningKey + "; run 'wipecert keys generate'")
	}
	if !report.PublicFound {
		out.Info("No public key at " + report.PublicKey + "; verify will need --public-key")
	}

	if result.HasMissingRequired {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.FormatMissingToolsError(result.MissingRequiredTools()))
		return fmt.Errorf("%w: run 'wipecert doctor' again after installing them", errors.ErrToolUnavailable)
	}
	if !report.KeyPresent {
		return fmt.Errorf("%w: %s", errors.ErrKeyNotFound, report.SigningKey)
	}

	out.Success("Ready")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func orNA(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
