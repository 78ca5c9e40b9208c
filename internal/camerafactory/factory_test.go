package camerafactory

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/camera/httpcam"
	"github.com/srg/astrod/internal/camera/simulated"
	"github.com/srg/astrod/internal/testutils"
	"github.com/srg/astrod/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFactory(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		want    any
		wantErr bool
	}{
		{name: "simulated", driver: config.DriverSimulated, want: &simulated.Driver{}},
		{name: "http", driver: config.DriverHTTP, want: &httpcam.Driver{}},
		{name: "unknown", driver: "usb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Driver = tt.driver

			drv, err := DriverFactory(cfg, logrus.New())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, drv)
		})
	}
}

func TestNewSession_UsesOverriddenFactory(t *testing.T) {
	h := testutils.NewTestHelper(t)
	mock := &testutils.MockDriver{}

	orig := DriverFactory
	t.Cleanup(func() { DriverFactory = orig })
	DriverFactory = func(*config.Config, *logrus.Logger) (camera.Driver, error) {
		return mock, nil
	}

	s, err := NewSession(config.DefaultConfig(), h.Logger)
	require.NoError(t, err)
	assert.Same(t, mock, s.Driver())
	assert.Equal(t, camera.Disconnected, s.State())
	assert.Contains(t, h.Logs(), "Camera driver selected")
}
