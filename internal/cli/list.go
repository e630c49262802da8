package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/certificate"
	"github.com/mrz1836/wipecert/internal/errors"
)

// listEntry summarizes one stored certificate.
type listEntry struct {
	File      string `json:"file"`
	ReportID  string `json:"report_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Device    string `json:"device,omitempty"`
	Serial    string `json:"serial,omitempty"`
	Method    string `json:"method,omitempty"`
	Status    string `json:"status"`
}

// AddListCommand adds the list command to the root command.
func AddListCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List certificates in the certificate directory",
		Long: `List the certificates stored in the configured certificate directory.

The status column is the wipe status recorded in each certificate. It is
not a signature check; use 'wipecert verify' for that.`,
		Args: cobra.NoArgs,
		RunE: runList,
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out, format := outputFor(cmd)
	svc := newServices(configFromContext(ctx), GetLogger())

	paths, err := svc.Store.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list certificates")
	}

	entries := make([]listEntry, 0, len(paths))
	for _, p := range paths {
		entry := listEntry{File: p}
		data, loadErr := svc.Store.Load(ctx, p)
		if loadErr != nil {
			entry.Status = verifyStatusError
			entries = append(entries, entry)
			continue
		}
		r, parseErr := certificate.Parse(data)
		if parseErr != nil {
			entry.Status = certificate.StatusMalformed.String()
			entries = append(entries, entry)
			continue
		}
		entry.ReportID = r.ReportID
		entry.Timestamp = r.Timestamp
		entry.Device = r.DriveInfo.Path
		entry.Serial = r.DriveInfo.Serial
		entry.Method = r.WipeDetails.Method
		entry.Status = r.WipeDetails.Status
		entries = append(entries, entry)
	}

	if format == OutputJSON {
		return out.JSON(entries)
	}

	if len(entries) == 0 {
		out.Info(fmt.Sprintf("No certificates in %s", svc.Store.Dir()))
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{filepath.Base(e.File), e.Timestamp, e.Device, e.Method, e.Status}
	}
	out.Table([]string{"FILE", "COMPLETED (UTC)", "DEVICE", "METHOD", "STATUS"}, rows)
	return nil
}
