package main

import (
	"errors"
	"fmt"

	"github.com/salvagekit/salvage/pkg/salvage/source"
	"github.com/salvagekit/salvage/pkg/salvage/types"
	"github.com/spf13/cobra"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "List drives available for scanning",
	Long: `List the block devices attached to this machine.

Any listed device can be passed to salvage for scanning. On platforms
without drive enumeration, pass a device or image path directly.`,
	RunE: runDrives,
}

func init() {
	rootCmd.AddCommand(drivesCmd)
}

// runDrives prints the attached block devices.
func runDrives(cmd *cobra.Command, args []string) error {
	drives, err := source.ListDrives()
	if err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return fmt.Errorf("drive enumeration is not supported on this platform; pass a device path directly")
		}
		return fmt.Errorf("failed to list drives: %w", err)
	}

	if len(drives) == 0 {
		printInfo("No drives found.")
		return nil
	}

	fmt.Printf("%-16s  %10s  %-9s  %s\n", "DEVICE", "SIZE", "REMOVABLE", "MODEL")
	for _, d := range drives {
		size := "-"
		if d.Size > 0 {
			size = types.FormatSize(d.Size)
		}
		removable := "no"
		if d.Removable {
			removable = "yes"
		}
		fmt.Printf("%-16s  %10s  %-9s  %s\n", d.Path, size, removable, d.Model)
	}

	return nil
}
