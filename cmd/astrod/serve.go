package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/astrod/internal/camerafactory"
	"github.com/srg/astrod/internal/dispatcher"
	"github.com/srg/astrod/internal/groutine"
	"github.com/srg/astrod/internal/peripheral"
	"github.com/srg/astrod/internal/settings"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Advertise the camera as a BLE peripheral",
		Long: `Publishes the Battery Service and the config service and answers
characteristic requests until interrupted.

Examples:
  # Serve the simulated camera
  astrod serve

  # Serve a camera behind the HTTP backend
  astrod serve --driver http --config /etc/astrod.yaml

  # Debug logging
  astrod serve --verbose`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("name", "", "Advertised local name; overrides local_name from the configuration")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd, false)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		cfg.LocalName = name
	}

	preset, err := settings.ParseAssignments(cfg.CapturePreset)
	if err != nil {
		return err
	}

	session, err := camerafactory.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.WithError(err).Warn("Camera close failed")
		}
	}()

	server := peripheral.NewServer(cfg.Identifiers, peripheral.Options{LocalName: cfg.LocalName}, logger)
	d := dispatcher.New(cfg.Identifiers, session, server, dispatcher.Options{
		QueueSize:     cfg.QueueSize,
		CapturePreset: preset,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"driver":     cfg.Driver,
		"name":       cfg.LocalName,
		"queue_size": cfg.QueueSize,
	}).Info("Starting astrod")

	loop := groutine.Go(ctx, "dispatcher", d.Run)
	transport := groutine.Go(ctx, "ble-server", func(ctx context.Context) error {
		return server.Serve(ctx, d)
	})

	// whichever side stops first takes the other down
	var runErr error
	select {
	case runErr = <-transport:
		cancel()
		if err := <-loop; err != nil && !errors.Is(err, context.Canceled) {
			runErr = errors.Join(runErr, err)
		}
	case runErr = <-loop:
		cancel()
		if err := <-transport; err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	logger.Info("astrod stopped")
	return runErr
}
