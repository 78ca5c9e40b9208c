package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/camerafactory"
	"github.com/srg/astrod/internal/record"
	"github.com/srg/astrod/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change camera settings without BLE",
		Long: `Runs the setting normalizer against the configured camera driver.
Values are shown exactly as a BLE client would receive them.`,
	}
	cmd.PersistentFlags().String("format", formatText, "Output format (text, json)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(newSettingsListCmd(), newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List setting ids in driver order",
		Long: `Lists the setting ids the camera reports.

Examples:
  # Ids only
  astrod settings list

  # Ids with their current values
  astrod settings list --values

  # Everything as JSON, keyed by id
  astrod settings list --values --format json`,
		Args: cobra.NoArgs,
		RunE: runSettingsList,
	}
	cmd.Flags().Bool("values", false, "Read and show every setting")
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> [id...]",
		Short: "Read settings",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSettingsGet,
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id>=<value> [id=value...]",
		Short: "Write settings",
		Long: `Writes each assignment in order and stops at the first failure.

Examples:
  astrod settings set iso=800
  astrod settings set iso=800 shutterspeed=0.0100s`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSettingsSet,
	}
}

// bench is a connected normalizer for one CLI invocation.
type bench struct {
	session    *camera.Session
	normalizer *settings.Normalizer
	logger     *logrus.Logger
	palette    *palette
	format     string
}

func openBench(cmd *cobra.Command) (*bench, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = formatText
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	cfg, logger, err := setup(cmd, true)
	if err != nil {
		return nil, err
	}
	session, err := camerafactory.NewSession(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := session.Ensure(cmd.Context()); err != nil {
		_ = session.Close()
		return nil, err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	return &bench{
		session:    session,
		normalizer: settings.New(session.Driver(), logger),
		logger:     logger,
		palette:    newPalette(cmd.OutOrStdout(), noColor),
		format:     format,
	}, nil
}

func (b *bench) Close() {
	if err := b.session.Close(); err != nil {
		b.logger.WithError(err).Warn("Camera close failed")
	}
}

func (b *bench) print(cmd *cobra.Command, records []*record.ConfigRecord) error {
	out := cmd.OutOrStdout()
	if b.format == formatJSON {
		data, err := recordsJSON(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	for _, r := range records {
		b.palette.writeRecord(out, r)
	}
	return nil
}

func (b *bench) readAll(cmd *cobra.Command, ids []string) ([]*record.ConfigRecord, error) {
	records := make([]*record.ConfigRecord, 0, len(ids))
	for _, id := range ids {
		r, err := b.normalizer.Read(cmd.Context(), id)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", id, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	b, err := openBench(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ids, err := b.normalizer.List(cmd.Context())
	if err != nil {
		return err
	}

	if values, _ := cmd.Flags().GetBool("values"); values {
		records, err := b.readAll(cmd, ids)
		if err != nil {
			return err
		}
		return b.print(cmd, records)
	}

	out := cmd.OutOrStdout()
	if b.format == formatJSON {
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, b.palette.id.Sprint(id))
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	b, err := openBench(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	records, err := b.readAll(cmd, args)
	if err != nil {
		return err
	}
	return b.print(cmd, records)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	assignments, err := settings.ParseAssignments(args)
	if err != nil {
		return err
	}

	b, err := openBench(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	records := make([]*record.ConfigRecord, 0, len(assignments))
	for _, a := range assignments {
		if err := b.normalizer.Write(cmd.Context(), a.ID, a.Value); err != nil {
			return fmt.Errorf("set %s: %w", a, err)
		}
		r, err := b.normalizer.Read(cmd.Context(), a.ID)
		if err != nil {
			return fmt.Errorf("read back %s: %w", a.ID, err)
		}
		records = append(records, r)
	}
	return b.print(cmd, records)
}
