package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/astrod/pkg/config"
)

// configureLogger creates a logger with the appropriate log level based on flags.
// --log-level takes precedence over --verbose; without either, fallback is used.
// Logs go to the command's stderr so that stdout stays machine-readable.
func configureLogger(cmd *cobra.Command, fallback logrus.Level) (*logrus.Logger, error) {
	logLevel := fallback

	logLevelStr, _ := cmd.Flags().GetString("log-level")
	if logLevelStr != "" {
		switch logLevelStr {
		case "debug":
			logLevel = logrus.DebugLevel
		case "info":
			logLevel = logrus.InfoLevel
		case "warn":
			logLevel = logrus.WarnLevel
		case "error":
			logLevel = logrus.ErrorLevel
		default:
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevelStr)
		}
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = logrus.DebugLevel
	}

	logger := logrus.New()
	logger.SetLevel(logLevel)
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger, nil
}

// loadConfig reads --config, applies flag overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if drv, _ := cmd.Flags().GetString("driver"); drv != "" {
		cfg.Driver = drv
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger. The configured level
// applies unless overridden on the command line.
func setup(cmd *cobra.Command, quiet bool) (*config.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	fallback, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fallback = logrus.InfoLevel
	}
	// bench commands print results on stdout; keep the log to warnings
	if quiet && !cmd.Flags().Changed("log-level") && fallback > logrus.WarnLevel {
		fallback = logrus.WarnLevel
	}

	logger, err := configureLogger(cmd, fallback)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
