// Package simulated provides a deterministic in-memory camera for hosts
// without camera hardware.
package simulated

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/fault"
)

// DefaultBatteryLevel is the level reported by the simulated camera.
const DefaultBatteryLevel = 80

// Driver is a camera.Driver backed by a fixed set of widgets.
// Writes are kept, so later reads reflect them.
type Driver struct {
	mu           sync.Mutex
	order        []string
	widgets      map[string]camera.Widget
	connected    bool
	connectDelay time.Duration
	battery      uint8
	commits      int
	logger       *logrus.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithConnectDelay makes the first successful Connect take d.
func WithConnectDelay(d time.Duration) Option {
	return func(s *Driver) { s.connectDelay = d }
}

// WithWidgets replaces the canned settings.
func WithWidgets(ws ...camera.Widget) Option {
	return func(s *Driver) {
		s.order = s.order[:0]
		s.widgets = make(map[string]camera.Widget, len(ws))
		for _, w := range ws {
			s.order = append(s.order, w.Name())
			s.widgets[w.Name()] = camera.Clone(w)
		}
	}
}

// WithBatteryLevel overrides DefaultBatteryLevel.
func WithBatteryLevel(level uint8) Option {
	return func(s *Driver) { s.battery = level }
}

// New returns a simulated camera with the canned iso, shutterspeed and f-number settings.
func New(logger *logrus.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = logrus.New()
	}
	d := &Driver{battery: DefaultBatteryLevel, logger: logger}
	WithWidgets(DefaultWidgets()...)(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultWidgets returns fresh copies of the canned settings.
func DefaultWidgets() []camera.Widget {
	return []camera.Widget{
		&camera.Radio{
			Base:   camera.Base{ID: "iso"},
			Choice: "12800",
			Choices: []string{
				"100", "200", "400", "800", "1600", "3200", "6400", "12800", "25600",
			},
		},
		&camera.Radio{
			Base:   camera.Base{ID: "shutterspeed"},
			Choice: "0.0050s",
			Choices: []string{
				"0.0002s", "0.0003s", "0.0004s", "0.0005s", "0.0006s", "0.0008s", "0.0010s",
				"0.0012s", "0.0015s", "0.0020s", "0.0025s", "0.0031s", "0.0040s", "0.0050s",
				"0.0062s", "0.0080s", "0.0100s", "0.0125s", "0.0166s", "0.0200s", "0.0250s",
				"0.0333s", "0.0400s", "0.0500s", "0.0666s", "0.0769s", "0.1000s", "0.1250s",
				"0.1666s", "0.2000s", "0.2500s", "0.3333s", "0.4000s", "0.5000s", "0.6250s",
				"0.7692s", "1.0000s", "1.3000s", "1.6000s", "2.0000s", "2.5000s", "3.0000s",
				"4.0000s", "5.0000s", "6.0000s", "8.0000s", "10.0000s", "13.0000s", "15.0000s",
				"20.0000s", "25.0000s", "30.0000s",
			},
		},
		&camera.Radio{
			Base:   camera.Base{ID: "f-number", ReadOnly: true},
			Choice: "f/14",
			Choices: []string{
				"f/4.5", "f/5", "f/5.6", "f/6.3", "f/7.1", "f/8", "f/9", "f/10", "f/11",
				"f/13", "f/14", "f/16", "f/18", "f/20", "f/22",
			},
		},
	}
}

func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}

	if d.connectDelay > 0 {
		d.logger.WithField("delay", d.connectDelay).Debug("Simulating camera connect")
		select {
		case <-time.After(d.connectDelay):
		case <-ctx.Done():
			return fault.Wrap(fault.Connection, "connect", ctx.Err())
		}
	}

	d.connected = true
	return nil
}

func (d *Driver) ReadSetting(_ context.Context, id string) (camera.Widget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, fault.Wrap(fault.Connection, "read setting", camera.ErrNotConnected)
	}
	w, ok := d.widgets[id]
	if !ok {
		return nil, fault.Wrap(fault.DriverRejected, "read setting", &camera.NotFoundError{ID: id})
	}
	return camera.Clone(w), nil
}

func (d *Driver) WriteSetting(_ context.Context, w camera.Widget) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return fault.Wrap(fault.Connection, "write setting", camera.ErrNotConnected)
	}
	cur, ok := d.widgets[w.Name()]
	if !ok {
		return fault.Wrap(fault.DriverRejected, "write setting", &camera.NotFoundError{ID: w.Name()})
	}
	if cur.Readonly() {
		return fault.Wrap(fault.DriverRejected, "write setting", camera.ErrReadOnly)
	}
	if cur.Kind() != w.Kind() {
		return fault.New(fault.DriverRejected, "write setting", "%s is a %s, got %s", w.Name(), cur.Kind(), w.Kind())
	}
	next := camera.Clone(w)
	if r, ok := w.(*camera.Radio); ok {
		// the stored choices stay authoritative whatever the caller sent
		radio := camera.Clone(cur).(*camera.Radio)
		if err := radio.SetChoice(r.Choice); err != nil {
			return err
		}
		next = radio
	}

	d.widgets[w.Name()] = next
	d.commits++
	return nil
}

func (d *Driver) ListSettings(context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil, fault.Wrap(fault.Connection, "list settings", camera.ErrNotConnected)
	}
	return slices.Clone(d.order), nil
}

// Capture always fails: the simulated camera has no sensor.
func (d *Driver) Capture(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return fault.Wrap(fault.Connection, "capture", camera.ErrNotConnected)
	}
	return fault.Wrap(fault.Unsupported, "capture", camera.ErrUnsupported)
}

func (d *Driver) BatteryLevel(context.Context) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return 0, fault.Wrap(fault.Connection, "battery level", camera.ErrNotConnected)
	}
	return d.battery, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	return nil
}

// Commits returns the number of successful WriteSetting calls.
func (d *Driver) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}
