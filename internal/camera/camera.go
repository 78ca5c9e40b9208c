package camera

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/fault"
)

// Driver is the facade over a physical or simulated camera.
// Implementations report failures with fault errors where the kind is known.
type Driver interface {
	// Connect is cheap and idempotent; it is called before every operation.
	Connect(ctx context.Context) error
	// ReadSetting returns a copy of the widget named id.
	ReadSetting(ctx context.Context, id string) (Widget, error)
	// WriteSetting commits w, which must come from ReadSetting.
	WriteSetting(ctx context.Context, w Widget) error
	// ListSettings returns every setting id in driver order.
	ListSettings(ctx context.Context) ([]string, error)
	Capture(ctx context.Context) error
	BatteryLevel(ctx context.Context) (uint8, error)
	Close() error
}

// Driver errors. Drivers wrap them with fault.Wrap to attach a Kind.
var (
	ErrNotConnected = errors.New("camera not connected")
	ErrReadOnly     = errors.New("setting is read-only")
	ErrUnsupported  = errors.New("not supported by this camera")
)

// NotFoundError reports a setting id the driver does not know.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("setting %q not found", e.ID)
}

// State is the connection state of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns the driver and tracks its connection state.
// It is not safe for concurrent use; the dispatcher loop is its only caller.
type Session struct {
	driver Driver
	state  State
	logger *logrus.Logger
}

// NewSession wraps driver in a Disconnected session.
func NewSession(driver Driver, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{driver: driver, logger: logger}
}

// Driver returns the owned driver.
func (s *Session) Driver() Driver {
	return s.driver
}

// State returns the current connection state.
func (s *Session) State() State {
	return s.state
}

// Ensure runs a connect step. It leaves the session Connected on success and
// Disconnected on failure; there is no retry.
func (s *Session) Ensure(ctx context.Context) error {
	prev := s.state
	s.state = Connecting

	if err := s.driver.Connect(ctx); err != nil {
		s.state = Disconnected
		s.logger.WithFields(logrus.Fields{
			"previous": prev.String(),
			"error":    err,
		}).Error("Camera is not connected")
		if fault.KindOf(err) == fault.Connection {
			return err
		}
		return fault.Wrap(fault.Connection, "connect", err)
	}

	s.state = Connected
	if prev != Connected {
		s.logger.WithField("previous", prev.String()).Info("Camera connected")
	}
	return nil
}

// Close releases the driver and marks the session Disconnected.
func (s *Session) Close() error {
	s.state = Disconnected
	return s.driver.Close()
}
