package peripheral

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-ble/ble"
	"github.com/srg/astrod/internal/dispatcher"
)

type fakeAddr string

func (a fakeAddr) String() string { return string(a) }

type fakeConn struct {
	ble.Conn
	addr fakeAddr
}

func (c *fakeConn) RemoteAddr() ble.Addr { return c.addr }

type fakeRequest struct {
	ble.Request
	conn   *fakeConn
	data   []byte
	offset int
}

func (r *fakeRequest) Conn() ble.Conn { return r.conn }
func (r *fakeRequest) Data() []byte   { return r.data }
func (r *fakeRequest) Offset() int    { return r.offset }

type fakeResponse struct {
	ble.ResponseWriter
	buf    bytes.Buffer
	status ble.ATTError
	cap    int
}

func (w *fakeResponse) Write(b []byte) (int, error)   { return w.buf.Write(b) }
func (w *fakeResponse) Status() ble.ATTError          { return w.status }
func (w *fakeResponse) SetStatus(status ble.ATTError) { w.status = status }
func (w *fakeResponse) Len() int                      { return w.buf.Len() }
func (w *fakeResponse) Cap() int                      { return w.cap }

type fakeNotifier struct {
	ble.Notifier
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	sent   [][]byte
	err    error
}

func newFakeNotifier() *fakeNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeNotifier{ctx: ctx, cancel: cancel}
}

func (n *fakeNotifier) Context() context.Context { return n.ctx }
func (n *fakeNotifier) Cap() int                 { return 20 }
func (n *fakeNotifier) Close() error             { n.cancel(); return nil }

func (n *fakeNotifier) Write(b []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return 0, n.err
	}
	n.sent = append(n.sent, append([]byte(nil), b...))
	return len(b), nil
}

func (n *fakeNotifier) payloads() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]byte(nil), n.sent...)
}

// fakeSubmitter answers every request with rsp/err and records it.
type fakeSubmitter struct {
	mu   sync.Mutex
	reqs []dispatcher.Request
	rsp  dispatcher.Response
	err  error
}

func (f *fakeSubmitter) Submit(_ context.Context, req dispatcher.Request) (dispatcher.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.rsp, f.err
}

// fakeDevice is a ble.Device that records services and blocks while advertising.
type fakeDevice struct {
	ble.Device
	mu         sync.Mutex
	services   []*ble.Service
	advertised []ble.UUID
	name       string
	stopped    bool
	advErr     error
	addErr     error
}

func (d *fakeDevice) AddService(svc *ble.Service) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.addErr != nil {
		return d.addErr
	}
	d.services = append(d.services, svc)
	return nil
}

func (d *fakeDevice) AdvertiseNameAndServices(ctx context.Context, name string, uuids ...ble.UUID) error {
	d.mu.Lock()
	d.name = name
	d.advertised = uuids
	err := d.advErr
	d.mu.Unlock()
	if err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}
