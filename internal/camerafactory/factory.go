// Package camerafactory selects the camera driver once, at startup.
package camerafactory

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/camera/httpcam"
	"github.com/srg/astrod/internal/camera/simulated"
	"github.com/srg/astrod/pkg/config"
)

// DriverFactory builds the driver named by cfg.Driver.
// This is a variable so that it can be overridden in tests.
var DriverFactory = func(cfg *config.Config, logger *logrus.Logger) (camera.Driver, error) {
	switch cfg.Driver {
	case config.DriverSimulated:
		return simulated.New(logger,
			simulated.WithConnectDelay(cfg.Simulated.ConnectDelay),
			simulated.WithBatteryLevel(cfg.Simulated.BatteryLevel),
		), nil
	case config.DriverHTTP:
		return httpcam.New(httpcam.Options{
			BaseURL:  cfg.HTTP.BaseURL,
			Timeout:  cfg.HTTP.Timeout,
			Settings: cfg.HTTP.Settings,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown camera driver %q", cfg.Driver)
	}
}

// NewSession builds the configured driver and wraps it in a Disconnected session.
func NewSession(cfg *config.Config, logger *logrus.Logger) (*camera.Session, error) {
	if logger == nil {
		logger = logrus.New()
	}
	drv, err := DriverFactory(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.WithField("driver", cfg.Driver).Info("Camera driver selected")
	return camera.NewSession(drv, logger), nil
}
