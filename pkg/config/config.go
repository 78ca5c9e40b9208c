package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Supported camera drivers.
const (
	DriverSimulated = "simulated"
	DriverHTTP      = "http"
)

// Config holds daemon configuration
type Config struct {
	LogLevel      string          `yaml:"log_level" default:"info"`
	Driver        string          `yaml:"driver" default:"simulated"`
	LocalName     string          `yaml:"local_name" default:"Astro Helper"`
	QueueSize     int             `yaml:"queue_size" default:"256"`
	Simulated     SimulatedConfig `yaml:"simulated"`
	HTTP          HTTPConfig      `yaml:"http"`
	CapturePreset []string        `yaml:"capture_preset"`
	Identifiers   Identifiers     `yaml:"identifiers"`
}

// SimulatedConfig tunes the simulated camera.
type SimulatedConfig struct {
	ConnectDelay time.Duration `yaml:"connect_delay" default:"0s"`
	BatteryLevel uint8         `yaml:"battery_level" default:"80"`
}

// HTTPConfig points at the camera HTTP backend.
type HTTPConfig struct {
	BaseURL  string        `yaml:"base_url" default:"http://127.0.0.1:8080"`
	Timeout  time.Duration `yaml:"timeout" default:"10s"`
	Settings []string      `yaml:"settings"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	cfg.HTTP.Settings = []string{"iso", "shutterspeed", "f-number"}
	cfg.CapturePreset = []string{
		"capturetarget=Memory card",
		"viewfinder=0",
		"imagequality=NEF (Raw)",
	}
	cfg.Identifiers = DefaultIdentifiers()
	return cfg
}

// Load overlays the YAML file at path on top of DefaultConfig.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	switch c.Driver {
	case DriverSimulated:
	case DriverHTTP:
		if c.HTTP.BaseURL == "" {
			return errors.New("http.base_url is required for the http driver")
		}
		if len(c.HTTP.Settings) == 0 {
			return errors.New("http.settings must list at least one setting id")
		}
	default:
		return fmt.Errorf("driver: unknown driver %q (want %s or %s)", c.Driver, DriverSimulated, DriverHTTP)
	}

	if c.LocalName == "" {
		return errors.New("local_name must not be empty")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	for _, step := range c.CapturePreset {
		if !strings.Contains(step, "=") {
			return fmt.Errorf("capture_preset: %q is not an id=value pair", step)
		}
	}
	return c.Identifiers.Validate()
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
