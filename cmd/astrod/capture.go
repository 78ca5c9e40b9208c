package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/srg/astrod/internal/settings"
)

func newCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Apply the capture preset and take a picture",
		Long: `Applies capture_preset from the configuration (or --preset) and triggers
a capture. Preset steps that fail are logged and skipped.

Examples:
  astrod capture --driver http
  astrod capture --preset viewfinder=0 --preset imagequality=JPEG`,
		Args: cobra.NoArgs,
		RunE: runCapture,
	}
	cmd.Flags().StringArray("preset", nil, "Preset step id=value; replaces capture_preset when given")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("format", formatText, "Output format (text, json)")
	return cmd
}

func runCapture(cmd *cobra.Command, _ []string) error {
	steps, _ := cmd.Flags().GetStringArray("preset")
	if len(steps) == 0 {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		steps = cfg.CapturePreset
	}
	preset, err := settings.ParseAssignments(steps)
	if err != nil {
		return err
	}

	b, err := openBench(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.normalizer.Capture(cmd.Context(), preset); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Capture complete")
	return nil
}
