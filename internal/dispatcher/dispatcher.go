// Package dispatcher routes characteristic requests to the camera.
//
// One goroutine (Run) drains a FIFO queue and handles each request to
// completion before taking the next, so the camera driver is never called
// concurrently and the session needs no locking.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/srg/astrod/internal/camera"
	"github.com/srg/astrod/internal/fault"
	"github.com/srg/astrod/internal/settings"
	"github.com/srg/astrod/internal/wire"
	"github.com/srg/astrod/pkg/config"
)

// DefaultQueueSize bounds the number of requests waiting for the loop.
const DefaultQueueSize = 256

// Options tunes a Dispatcher.
type Options struct {
	QueueSize     int
	CapturePreset []settings.Assignment
}

type route struct {
	op   Op
	char uuid.UUID
}

type handler func(ctx context.Context, req Request) (Response, bool)

type queued struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Dispatcher owns the camera session for the process lifetime.
type Dispatcher struct {
	ids        config.Identifiers
	session    *camera.Session
	normalizer *settings.Normalizer
	publisher  Publisher
	preset     []settings.Assignment
	routes     map[route]handler
	queue      chan queued
	logger     *logrus.Logger
}

// New builds a Dispatcher. ids is copied and never changes afterwards.
func New(ids config.Identifiers, session *camera.Session, publisher Publisher, opts Options, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		ids:        ids,
		session:    session,
		normalizer: settings.New(session.Driver(), logger),
		publisher:  publisher,
		preset:     append([]settings.Assignment(nil), opts.CapturePreset...),
		queue:      make(chan queued, opts.QueueSize),
		logger:     logger,
	}
	d.routes = map[route]handler{
		{OpRead, ids.BatteryLevel}:  d.readBattery,
		{OpRead, ids.SettingList}:   d.readSettingList,
		{OpWrite, ids.SettingRead}:  d.requestSetting,
		{OpWrite, ids.SettingWrite}: d.writeSetting,
		{OpWrite, ids.Capture}:      d.capture,
	}
	return d
}

// Submit enqueues req and waits for its response. It returns ErrNoResponse when
// the request is deliberately left unanswered, and ctx.Err() if ctx ends first.
func (d *Dispatcher) Submit(ctx context.Context, req Request) (Response, error) {
	q := queued{ctx: ctx, req: req, reply: make(chan Response, 1)}

	select {
	case d.queue <- q:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case rsp, ok := <-q.reply:
		if !ok {
			return Response{}, ErrNoResponse
		}
		return rsp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Run processes queued requests one at a time until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Debug("Dispatcher loop started")
	defer d.logger.Debug("Dispatcher loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-d.queue:
			if q.ctx.Err() != nil {
				// the transport gave up waiting
				close(q.reply)
				continue
			}
			if rsp, ok := d.Dispatch(q.ctx, q.req); ok {
				q.reply <- rsp
			}
			close(q.reply)
		}
	}
}

// Dispatch handles req synchronously. The boolean is false when no response
// must be sent.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Response, bool) {
	log := d.logger.WithFields(logrus.Fields{
		"op":             req.Op.String(),
		"characteristic": req.Characteristic.String(),
		"offset":         req.Offset,
		"len":            len(req.Value),
	})

	h, ok := d.routes[route{req.Op, req.Characteristic}]
	if !ok {
		log.Warn("Request for unsupported characteristic")
		return Response{
			Status: StatusNotSupported,
			Err:    fault.New(fault.Unsupported, "dispatch", "%s on %s", req.Op, req.Characteristic),
		}, true
	}

	rsp, ok := h(ctx, req)
	switch {
	case !ok:
		log.Warn("Request left unanswered")
	case rsp.Err != nil:
		log.WithFields(logrus.Fields{"status": rsp.Status.String(), "error": rsp.Err}).Warn("Request failed")
	default:
		log.WithField("status", rsp.Status.String()).Debug("Request handled")
	}
	return rsp, ok
}

func (d *Dispatcher) readBattery(ctx context.Context, req Request) (Response, bool) {
	if err := d.session.Ensure(ctx); err != nil {
		return Response{Status: StatusNotSupported, Err: err}, true
	}
	level, err := d.session.Driver().BatteryLevel(ctx)
	if err != nil {
		return Response{Status: StatusNotSupported, Err: err}, true
	}
	return withOffset([]byte{level}, req.Offset), true
}

// readSettingList answers with the comma-joined ids and pushes the encoded
// list to subscribers. Continuation reads (offset > 0) re-query the camera
// without pushing. Failures send nothing at all.
func (d *Dispatcher) readSettingList(ctx context.Context, req Request) (Response, bool) {
	if err := d.session.Ensure(ctx); err != nil {
		d.logger.WithError(err).Error("Cannot list settings")
		return Response{}, false
	}
	ids, err := d.normalizer.List(ctx)
	if err != nil {
		d.logger.WithError(err).Error("Cannot list settings")
		return Response{}, false
	}

	if req.Offset == 0 {
		data, err := wire.EncodeList(ids)
		if err == nil {
			err = d.publisher.Notify(d.ids.SettingList, data)
		}
		if err != nil {
			d.logger.WithError(err).Warn("Setting list push failed")
		}
	}

	return withOffset(wire.JoinList(ids), req.Offset), true
}

// requestSetting takes a setting id and pushes its encoded record on the
// setting read characteristic.
func (d *Dispatcher) requestSetting(ctx context.Context, req Request) (Response, bool) {
	id, err := settingID(req.Value)
	if err != nil {
		return failure(err), true
	}
	if err := d.session.Ensure(ctx); err != nil {
		return failure(err), true
	}

	rec, err := d.normalizer.Read(ctx, id)
	if errors.Is(err, settings.ErrNoRecord) {
		// a lookup of a group or button fails; it is not a refused write
		return Response{Status: StatusUnlikelyError, Err: err}, true
	}
	if err != nil {
		return failure(err), true
	}
	data, err := wire.EncodeConfig(rec)
	if err != nil {
		return failure(err), true
	}
	if err := d.publisher.Notify(d.ids.SettingRead, data); err != nil {
		return failure(fmt.Errorf("push %s: %w", id, err)), true
	}

	d.logger.WithFields(logrus.Fields{"setting": id, "bytes": len(data)}).Debug("Setting pushed")
	return Response{Status: StatusSuccess}, true
}

func (d *Dispatcher) writeSetting(ctx context.Context, req Request) (Response, bool) {
	a, err := assignment(req.Value)
	if err != nil {
		return failure(err), true
	}
	if err := d.session.Ensure(ctx); err != nil {
		return failure(err), true
	}
	if err := d.normalizer.Write(ctx, a.ID, a.Value); err != nil {
		return failure(err), true
	}
	return Response{Status: StatusSuccess}, true
}

// capture is acknowledged as success whatever the camera reports.
func (d *Dispatcher) capture(ctx context.Context, _ Request) (Response, bool) {
	err := d.session.Ensure(ctx)
	if err == nil {
		err = d.normalizer.Capture(ctx, d.preset)
	}
	if err != nil {
		d.logger.WithError(err).Error("Capture failed")
	}
	return Response{Status: StatusSuccess}, true
}

func failure(err error) Response {
	return Response{Status: StatusFor(err), Err: err}
}

func withOffset(value []byte, offset int) Response {
	if offset < 0 || offset > len(value) {
		return Response{
			Status: StatusInvalidOffset,
			Err:    fault.New(fault.MalformedInput, "read", "offset %d beyond %d bytes", offset, len(value)),
		}
	}
	return Response{Status: StatusSuccess, Value: value[offset:]}
}

func settingID(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", fault.New(fault.MalformedInput, "parse setting id", "payload is not UTF-8")
	}
	if len(payload) == 0 {
		return "", fault.New(fault.MalformedInput, "parse setting id", "empty setting id")
	}
	return string(payload), nil
}

func assignment(payload []byte) (settings.Assignment, error) {
	if !utf8.Valid(payload) {
		return settings.Assignment{}, fault.New(fault.MalformedInput, "parse assignment", "payload is not UTF-8")
	}
	return settings.ParseAssignment(string(payload))
}
