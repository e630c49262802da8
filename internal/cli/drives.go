package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/errors"
)

// AddDrivesCommand adds the drives command to the root command.
func AddDrivesCommand(root *cobra.Command) {
	root.AddCommand(newDrivesCmd())
}

func newDrivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List whole-disk devices that can be wiped",
		Long: `List whole disks reported by lsblk, excluding loop devices.

Attributes the system does not report are shown as N/A.`,
		Args: cobra.NoArgs,
		RunE: runDrives,
	}
}

func runDrives(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out, format := outputFor(cmd)
	svc := newServices(configFromContext(ctx), GetLogger())

	drives, err := svc.Drives(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to enumerate drives")
	}

	if format == OutputJSON {
		return out.JSON(drives)
	}

	if len(drives) == 0 {
		out.Warning("No drives found.")
		return nil
	}

	out.Table([]string{"PATH", "MODEL", "SIZE", "SERIAL"}, driveRows(drives))
	out.Info(fmt.Sprintf("%d drive(s). Run 'wipecert wipe <path>' to erase one.", len(drives)))
	return nil
}

func driveRows(drives []domain.DriveDescriptor) [][]string {
	rows := make([][]string, len(drives))
	for i, d := range drives {
		rows[i] = []string{d.Path, d.Model, d.Size, d.Serial}
	}
	return rows
}
