// Package peripheral publishes the camera GATT services with go-ble and
// forwards characteristic access to the dispatcher.
package peripheral

import (
	"context"
	"errors"
	"fmt"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/dispatcher"
	"github.com/srg/astrod/pkg/config"
)

// DefaultLocalName is the advertised device name.
const DefaultLocalName = "Astro Helper"

// DeviceFactory creates ble.Device instances (can be overridden in tests)
var DeviceFactory = newDevice

// Submitter hands a request to the dispatcher loop and waits for its answer.
type Submitter interface {
	Submit(ctx context.Context, req dispatcher.Request) (dispatcher.Response, error)
}

// Options tunes a Server.
type Options struct {
	LocalName string
}

type subscriber struct {
	char   uuid.UUID
	remote string
	n      ble.Notifier
}

// Server owns the GATT services and the set of notification subscribers.
type Server struct {
	ids         config.Identifiers
	opts        Options
	subscribers *hashmap.Map[string, *subscriber]
	logger      *logrus.Logger
}

// NewServer creates a Server for the given identifier table.
func NewServer(ids config.Identifiers, opts Options, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.LocalName == "" {
		opts.LocalName = DefaultLocalName
	}
	return &Server{
		ids:         ids,
		opts:        opts,
		subscribers: hashmap.New[string, *subscriber](),
		logger:      logger,
	}
}

// Services builds the battery and config services with handlers bound to sub.
func (s *Server) Services(ctx context.Context, sub Submitter) []*ble.Service {
	battery := ble.NewService(bleUUID(s.ids.BatteryService))
	level := battery.NewCharacteristic(bleUUID(s.ids.BatteryLevel))
	level.HandleRead(s.readHandler(ctx, sub, s.ids.BatteryLevel))
	level.HandleNotify(s.notifyHandler(s.ids.BatteryLevel))

	cfg := ble.NewService(bleUUID(s.ids.ConfigService))
	read := cfg.NewCharacteristic(bleUUID(s.ids.SettingRead))
	read.HandleWrite(s.writeHandler(ctx, sub, s.ids.SettingRead))
	read.HandleNotify(s.notifyHandler(s.ids.SettingRead))

	write := cfg.NewCharacteristic(bleUUID(s.ids.SettingWrite))
	write.HandleWrite(s.writeHandler(ctx, sub, s.ids.SettingWrite))

	list := cfg.NewCharacteristic(bleUUID(s.ids.SettingList))
	list.HandleRead(s.readHandler(ctx, sub, s.ids.SettingList))
	list.HandleNotify(s.notifyHandler(s.ids.SettingList))

	capture := cfg.NewCharacteristic(bleUUID(s.ids.Capture))
	capture.HandleWrite(s.writeHandler(ctx, sub, s.ids.Capture))

	return []*ble.Service{battery, cfg}
}

// Serve publishes the services and advertises until ctx is done.
// Cancellation is a clean shutdown and returns nil.
func (s *Server) Serve(ctx context.Context, sub Submitter) error {
	dev, err := DeviceFactory()
	if err != nil {
		return NormalizeError(err)
	}
	defer func() {
		if err := dev.Stop(); err != nil {
			s.logger.WithError(err).Debug("BLE device stop failed")
		}
	}()

	for _, svc := range s.Services(ctx, sub) {
		if err := dev.AddService(svc); err != nil {
			return fmt.Errorf("failed to add service %s: %w", svc.UUID, NormalizeError(err))
		}
	}

	s.logger.WithFields(logrus.Fields{
		"name":     s.opts.LocalName,
		"services": []string{s.ids.BatteryService.String(), s.ids.ConfigService.String()},
	}).Info("Advertising")

	err = dev.AdvertiseNameAndServices(ctx, s.opts.LocalName, bleUUID(s.ids.BatteryService), bleUUID(s.ids.ConfigService))
	if ctx.Err() != nil {
		s.logger.Info("Advertising stopped")
		return nil
	}
	if err == nil {
		// some stacks return once advertising has started
		<-ctx.Done()
		s.logger.Info("Advertising stopped")
		return nil
	}
	err = NormalizeError(err)
	if errors.Is(err, ErrBluetoothOff) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAdvertise, err)
}

// Notify pushes data to every client subscribed to char.
// Having no subscribers is not an error.
func (s *Server) Notify(char uuid.UUID, data []byte) error {
	var errs []error
	sent := 0

	s.subscribers.Range(func(_ string, sb *subscriber) bool {
		if sb.char != char {
			return true
		}
		log := s.logger.WithFields(logrus.Fields{
			"characteristic": char.String(),
			"remote":         sb.remote,
			"bytes":          len(data),
		})
		if c := sb.n.Cap(); c > 0 && len(data) > c {
			log.WithField("cap", c).Warn("Notification larger than the negotiated MTU")
		}
		if _, err := sb.n.Write(data); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", sb.remote, err))
			return true
		}
		sent++
		log.Debug("Notification sent")
		return true
	})

	if sent == 0 && len(errs) == 0 {
		s.logger.WithField("characteristic", char.String()).Debug("No subscribers to notify")
	}
	return errors.Join(errs...)
}

// Subscribers returns the number of active subscriptions.
func (s *Server) Subscribers() int {
	return s.subscribers.Len()
}

func (s *Server) readHandler(ctx context.Context, sub Submitter, char uuid.UUID) ble.ReadHandlerFunc {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		r, err := sub.Submit(ctx, dispatcher.Request{
			Op:             dispatcher.OpRead,
			Characteristic: char,
			Offset:         req.Offset(),
		})
		if err != nil {
			// ATT requires an answer even when the dispatcher sends none
			s.logger.WithFields(logrus.Fields{"characteristic": char.String(), "error": err}).Debug("Read left unanswered")
			rsp.SetStatus(ble.ErrUnlikely)
			return
		}

		rsp.SetStatus(attStatus(r.Status))
		if r.Status != dispatcher.StatusSuccess {
			return
		}
		value := r.Value
		if c := rsp.Cap(); c >= 0 && len(value) > c {
			value = value[:c]
		}
		if _, err := rsp.Write(value); err != nil {
			s.logger.WithError(err).Warn("Read response write failed")
		}
	}
}

func (s *Server) writeHandler(ctx context.Context, sub Submitter, char uuid.UUID) ble.WriteHandlerFunc {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		r, err := sub.Submit(ctx, dispatcher.Request{
			Op:             dispatcher.OpWrite,
			Characteristic: char,
			Offset:         req.Offset(),
			Value:          append([]byte(nil), req.Data()...),
		})
		if err != nil {
			s.logger.WithFields(logrus.Fields{"characteristic": char.String(), "error": err}).Debug("Write left unanswered")
			rsp.SetStatus(ble.ErrUnlikely)
			return
		}
		rsp.SetStatus(attStatus(r.Status))
	}
}

func (s *Server) notifyHandler(char uuid.UUID) ble.NotifyHandlerFunc {
	return func(req ble.Request, n ble.Notifier) {
		remote := remoteAddr(req)
		key := char.String() + "|" + remote
		log := s.logger.WithFields(logrus.Fields{"characteristic": char.String(), "remote": remote})

		s.subscribers.Set(key, &subscriber{char: char, remote: remote, n: n})
		log.Info("Client subscribed")

		<-n.Context().Done()

		s.subscribers.Del(key)
		log.Info("Client unsubscribed")
	}
}

func remoteAddr(req ble.Request) string {
	if c := req.Conn(); c != nil && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return "unknown"
}

func attStatus(st dispatcher.Status) ble.ATTError {
	switch st {
	case dispatcher.StatusSuccess:
		return ble.ErrSuccess
	case dispatcher.StatusNotSupported:
		return ble.ErrReqNotSupp
	case dispatcher.StatusInvalidOffset:
		return ble.ErrInvalidOffset
	case dispatcher.StatusInvalidValue:
		return ble.ErrInvalAttrValueLen
	case dispatcher.StatusWriteNotPermitted:
		return ble.ErrWriteNotPerm
	default:
		return ble.ErrUnlikely
	}
}
