package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/fault"
	"github.com/srg/astrod/internal/record"
)

// ErrNoRecord is wrapped by Normalize for widgets that carry no inspectable value.
var ErrNoRecord = errors.New("setting has no record")

// Normalizer translates between driver widgets and config records.
// It never retries; retry policy belongs to the caller.
type Normalizer struct {
	driver camera.Driver
	logger *logrus.Logger
}

// New creates a Normalizer over driver.
func New(driver camera.Driver, logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{driver: driver, logger: logger}
}

// Read builds a fresh record for id from the driver's current widget.
func (n *Normalizer) Read(ctx context.Context, id string) (*record.ConfigRecord, error) {
	w, err := n.driver.ReadSetting(ctx, id)
	if err != nil {
		return nil, driverError("read setting", err)
	}

	rec, err := Normalize(id, w)
	if err != nil {
		return nil, err
	}

	n.logger.WithFields(logrus.Fields{
		"setting": id,
		"kind":    w.Kind().String(),
		"value":   rec.Value,
		"choices": len(rec.Choices),
	}).Debug("Setting read")
	return rec, nil
}

// Normalize maps w onto a record carrying id.
func Normalize(id string, w camera.Widget) (*record.ConfigRecord, error) {
	rec := &record.ConfigRecord{ID: id, Readonly: w.Readonly()}

	switch v := w.(type) {
	case *camera.Text:
		rec.Value = v.Value
	case *camera.Range:
		rec.Value = FormatRange(v.Value)
	case *camera.Toggle:
		rec.Value = strconv.FormatBool(v.State != nil && *v.State)
	case *camera.Radio:
		rec.Value = v.Choice
		rec.Choices = append([]string(nil), v.Choices...)
	case *camera.Date:
		rec.Value = strconv.FormatInt(v.Timestamp, 10)
	default:
		// Group, Button
		return nil, fault.Wrap(fault.Unsupported, "normalize", fmt.Errorf("%s %s: %w", w.Kind(), id, ErrNoRecord))
	}
	return rec, nil
}

// Write applies raw to the setting id and commits it with exactly one
// driver WriteSetting call. Nothing is committed when raw does not fit the kind.
func (n *Normalizer) Write(ctx context.Context, id, raw string) error {
	log := n.logger.WithFields(logrus.Fields{"setting": id, "value": raw})

	w, err := n.driver.ReadSetting(ctx, id)
	if err != nil {
		return driverError("write setting", err)
	}
	if w.Readonly() {
		return fault.New(fault.Unsupported, "write setting", "%s is read-only", id)
	}

	switch v := w.(type) {
	case *camera.Text:
		v.Value = raw
	case *camera.Range:
		f, err := ParseRange(raw)
		if err != nil {
			return err
		}
		v.Value = f
	case *camera.Toggle:
		v.Set(ParseToggle(raw))
	case *camera.Radio:
		// the driver owns choice validation
		v.Choice = raw
	default:
		return fault.New(fault.Unsupported, "write setting", "%s settings cannot be written", w.Kind())
	}

	if err := n.driver.WriteSetting(ctx, w); err != nil {
		log.WithError(err).Warn("Setting write rejected")
		return driverError("write setting", err)
	}

	log.WithField("kind", w.Kind().String()).Info("Setting written")
	return nil
}

// List returns every setting id in driver order.
func (n *Normalizer) List(ctx context.Context) ([]string, error) {
	ids, err := n.driver.ListSettings(ctx)
	if err != nil {
		return nil, driverError("list settings", err)
	}
	return ids, nil
}

// Capture applies preset as best-effort writes, then triggers one capture.
// A failing preset step is logged and does not prevent the capture.
func (n *Normalizer) Capture(ctx context.Context, preset []Assignment) error {
	for _, step := range preset {
		if err := n.Write(ctx, step.ID, step.Value); err != nil {
			n.logger.WithFields(logrus.Fields{
				"setting": step.ID,
				"value":   step.Value,
				"error":   err,
			}).Warn("Capture preset step failed")
		}
	}

	if err := n.driver.Capture(ctx); err != nil {
		return driverError("capture", err)
	}
	n.logger.Info("Capture triggered")
	return nil
}

// FormatRange renders v with the fewest digits that parse back to the same float32.
func FormatRange(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

// driverError keeps a classified driver error as is and marks anything else DriverRejected.
func driverError(op string, err error) error {
	if fault.KindOf(err) != fault.Unknown {
		return err
	}
	return fault.Wrap(fault.DriverRejected, op, err)
}
