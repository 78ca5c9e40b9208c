package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// extraCommands are registered by build-constrained files (see decode.go).
var extraCommands []func() *cobra.Command

// newRootCmd assembles the command tree. Tests build a fresh tree per case
// so flag values never leak between them.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "astrod",
		Short: "Camera settings over Bluetooth Low Energy",
		Long: `astrod exposes a tethered camera as a BLE peripheral:

- Battery Service with the camera battery level
- Config service to list, read and write camera settings and trigger a capture
- Bench commands to drive the camera directly, without the BLE transport

Settings travel as CBOR records compressed with LZ4.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", formatVersion(version), commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging (same as --log-level debug)")
	root.PersistentFlags().String("driver", "", "Camera driver (simulated, http); overrides the configuration file")

	// Add -v as a short flag for --version
	root.Flags().BoolP("version", "v", false, "Show version information")

	root.AddCommand(newServeCmd())
	root.AddCommand(newSettingsCmd())
	root.AddCommand(newCaptureCmd())
	for _, add := range extraCommands {
		root.AddCommand(add())
	}
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}
