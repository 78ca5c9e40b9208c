// Package httpcam drives a camera through the gphoto HTTP backend.
//
// The backend exposes three GET routes:
//
//	/get-config-item/<id>  -> {"value": "...", "choices": [...], "read_only": bool}
//	/set-config-item/<id>  <- raw value as the request body
//	/capture-image
//
// Failures come back as HTTP 500 with a plain-text message.
package httpcam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/fault"
)

// DefaultBatteryLevel is reported because the backend has no battery route.
const DefaultBatteryLevel = 80

// maxBody bounds how much of a response is read.
const maxBody = 64 << 10

// Options configures a Driver.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Settings is returned by ListSettings; the backend cannot enumerate.
	Settings []string
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Driver is a camera.Driver backed by the HTTP backend.
type Driver struct {
	base     *url.URL
	client   *http.Client
	settings []string
	logger   *logrus.Logger

	mu        sync.Mutex
	connected bool
}

type configItem struct {
	Value    string   `json:"value"`
	Choices  []string `json:"choices"`
	ReadOnly bool     `json:"read_only"`
}

// New validates opts and returns a disconnected driver.
func New(opts Options, logger *logrus.Logger) (*Driver, error) {
	if logger == nil {
		logger = logrus.New()
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid camera base URL %q", opts.BaseURL)
	}
	if len(opts.Settings) == 0 {
		return nil, fmt.Errorf("at least one setting id is required")
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Driver{
		base:     u,
		client:   client,
		settings: slices.Clone(opts.Settings),
		logger:   logger,
	}, nil
}

// Connect checks the backend by reading the first configured setting.
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	ok := d.connected
	d.mu.Unlock()
	if ok {
		return nil
	}

	if _, err := d.getItem(ctx, d.settings[0]); err != nil {
		if fault.KindOf(err) == fault.Connection {
			return err
		}
		// the backend answered, so the camera is reachable
		d.logger.WithError(err).Debug("Connect check rejected by backend")
	}

	d.mu.Lock()
	d.connected = true
	d.mu.Unlock()
	d.logger.WithField("url", d.base.String()).Info("Connected to camera backend")
	return nil
}

func (d *Driver) ReadSetting(ctx context.Context, id string) (camera.Widget, error) {
	item, err := d.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	base := camera.Base{ID: id, ReadOnly: item.ReadOnly}
	if len(item.Choices) > 0 {
		return &camera.Radio{Base: base, Choice: item.Value, Choices: item.Choices}, nil
	}
	return &camera.Text{Base: base, Value: item.Value}, nil
}

func (d *Driver) WriteSetting(ctx context.Context, w camera.Widget) error {
	var value string
	switch v := w.(type) {
	case *camera.Radio:
		value = v.Choice
	case *camera.Text:
		value = v.Value
	case *camera.Range:
		value = strconv.FormatFloat(float64(v.Value), 'f', -1, 32)
	case *camera.Toggle:
		value = "0"
		if v.State != nil && *v.State {
			value = "1"
		}
	default:
		return fault.New(fault.Unsupported, "write setting", "%s settings cannot be written", w.Kind())
	}

	_, err := d.do(ctx, "write setting", "set-config-item/"+url.PathEscape(w.Name()), strings.NewReader(value))
	return err
}

func (d *Driver) ListSettings(ctx context.Context) ([]string, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(d.settings), nil
}

func (d *Driver) Capture(ctx context.Context) error {
	_, err := d.do(ctx, "capture", "capture-image", nil)
	return err
}

func (d *Driver) BatteryLevel(ctx context.Context) (uint8, error) {
	if err := d.Connect(ctx); err != nil {
		return 0, err
	}
	return DefaultBatteryLevel, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	d.client.CloseIdleConnections()
	return nil
}

func (d *Driver) getItem(ctx context.Context, id string) (*configItem, error) {
	body, err := d.do(ctx, "read setting", "get-config-item/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var item configItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fault.Wrap(fault.DriverRejected, "read setting", fmt.Errorf("decode %s: %w", id, err))
	}
	return &item, nil
}

// do issues a GET and classifies failures: transport errors are Connection,
// non-2xx answers are DriverRejected carrying the backend message.
func (d *Driver) do(ctx context.Context, op, path string, body io.Reader) ([]byte, error) {
	target := d.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), body)
	if err != nil {
		return nil, fault.Wrap(fault.MalformedInput, op, err)
	}

	log := d.logger.WithFields(logrus.Fields{"op": op, "url": target.String()})
	log.Debug("Camera backend request")

	resp, err := d.client.Do(req)
	if err != nil {
		d.mu.Lock()
		d.connected = false
		d.mu.Unlock()
		return nil, fault.Wrap(fault.Connection, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fault.Wrap(fault.Connection, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		log.WithFields(logrus.Fields{"status": resp.StatusCode, "message": msg}).Warn("Camera backend rejected request")
		if msg == "" {
			msg = resp.Status
		}
		return nil, fault.New(fault.DriverRejected, op, "%s", msg)
	}
	return data, nil
}
