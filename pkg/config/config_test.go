package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverSimulated, cfg.Driver)
	assert.Equal(t, "Astro Helper", cfg.LocalName)
	assert.Equal(t, 256, cfg.QueueSize)
	assert.Equal(t, time.Duration(0), cfg.Simulated.ConnectDelay)
	assert.Equal(t, uint8(80), cfg.Simulated.BatteryLevel)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.HTTP.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"iso", "shutterspeed", "f-number"}, cfg.HTTP.Settings)
	assert.Equal(t, []string{"capturetarget=Memory card", "viewfinder=0", "imagequality=NEF (Raw)"}, cfg.CapturePreset)
	assert.Equal(t, DefaultIdentifiers(), cfg.Identifiers)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultIdentifiers(t *testing.T) {
	ids := DefaultIdentifiers()

	assert.Equal(t, "0000180f-0000-1000-8000-00805f9b34fb", ids.BatteryService.String())
	assert.Equal(t, "00002a19-0000-1000-8000-00805f9b34fb", ids.BatteryLevel.String())
	assert.Equal(t, "6c7028e2-dc4a-11ef-9134-75e88a34574d", ids.ConfigService.String())
	assert.Equal(t, "87bdecc4-dc4a-11ef-ab7f-b7e88a34574d", ids.SettingRead.String())
	assert.Equal(t, "994e9452-dc4a-11ef-b90e-f0e88a34574d", ids.SettingWrite.String())
	assert.Equal(t, "9c39ab84-dc4a-11ef-8c45-fae88a34574d", ids.SettingList.String())
	assert.Equal(t, "114fc821-6a6e-4e81-bd05-1dd5ab7a679b", ids.Capture.String())
	assert.Len(t, ids.Characteristics(), 5)
	assert.NoError(t, ids.Validate())
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     logrus.Level
	}{
		{
			name:     "creates logger with debug level",
			logLevel: "debug",
			want:     logrus.DebugLevel,
		},
		{
			name:     "creates logger with info level",
			logLevel: "info",
			want:     logrus.InfoLevel,
		},
		{
			name:     "creates logger with warn level",
			logLevel: "warn",
			want:     logrus.WarnLevel,
		},
		{
			name:     "unknown level falls back to info",
			logLevel: "chatty",
			want:     logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel: tt.logLevel,
			}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.GetLevel())

			// Verify formatter is set correctly
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "http driver", mutate: func(c *Config) { c.Driver = DriverHTTP }},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "usb" }, wantErr: "unknown driver"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "http without url", mutate: func(c *Config) { c.Driver = DriverHTTP; c.HTTP.BaseURL = "" }, wantErr: "base_url"},
		{name: "http without settings", mutate: func(c *Config) { c.Driver = DriverHTTP; c.HTTP.Settings = nil }, wantErr: "http.settings"},
		{name: "empty local name", mutate: func(c *Config) { c.LocalName = "" }, wantErr: "local_name"},
		{name: "zero queue", mutate: func(c *Config) { c.QueueSize = 0 }, wantErr: "queue_size"},
		{name: "bad preset", mutate: func(c *Config) { c.CapturePreset = []string{"viewfinder"} }, wantErr: "capture_preset"},
		{name: "missing identifier", mutate: func(c *Config) { c.Identifiers.Capture = uuid.Nil }, wantErr: "identifiers.capture is not set"},
		{
			name:    "duplicate identifier",
			mutate:  func(c *Config) { c.Identifiers.SettingWrite = c.Identifiers.SettingRead },
			wantErr: "identifiers.setting_write duplicates identifiers.setting_read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "astrod.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
driver: http
http:
  base_url: http://camera.local:8080
  timeout: 3s
simulated:
  connect_delay: 2s
capture_preset:
  - viewfinder=0
identifiers:
  capture: 00000000-0000-0000-0000-0000000000aa
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverHTTP, cfg.Driver)
	assert.Equal(t, "http://camera.local:8080", cfg.HTTP.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Simulated.ConnectDelay)
	assert.Equal(t, []string{"viewfinder=0"}, cfg.CapturePreset)
	assert.Equal(t, "00000000-0000-0000-0000-0000000000aa", cfg.Identifiers.Capture.String())

	// untouched keys keep their defaults
	assert.Equal(t, "Astro Helper", cfg.LocalName)
	assert.Equal(t, DefaultIdentifiers().SettingRead, cfg.Identifiers.SettingRead)
	assert.Equal(t, []string{"iso", "shutterspeed", "f-number"}, cfg.HTTP.Settings)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("scan_timeout: 10s\n"), 0o600))
	_, err = Load(unknown)
	assert.ErrorContains(t, err, "failed to parse config")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := Load(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultConfig()
	}
}
