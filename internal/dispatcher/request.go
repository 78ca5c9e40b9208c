package dispatcher

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/srg/astrod/internal/fault"
)

// Op is the GATT operation carried by a Request.
type Op int

const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Request is one characteristic access handed over by the transport.
type Request struct {
	Op             Op
	Characteristic uuid.UUID
	Offset         int
	Value          []byte
}

// Status is the typed result code of a Request.
type Status int

const (
	StatusSuccess Status = iota
	// StatusNotSupported answers unknown characteristics and battery failures.
	StatusNotSupported
	// StatusInvalidOffset answers reads past the end of the value.
	StatusInvalidOffset
	// StatusInvalidValue answers malformed write payloads.
	StatusInvalidValue
	// StatusWriteNotPermitted answers writes to settings that cannot be set.
	StatusWriteNotPermitted
	// StatusUnlikelyError answers connection and driver failures.
	StatusUnlikelyError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotSupported:
		return "not_supported"
	case StatusInvalidOffset:
		return "invalid_offset"
	case StatusInvalidValue:
		return "invalid_value"
	case StatusWriteNotPermitted:
		return "write_not_permitted"
	case StatusUnlikelyError:
		return "unlikely_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StatusFor maps a failure onto the response code a client sees.
func StatusFor(err error) Status {
	switch fault.KindOf(err) {
	case "":
		return StatusSuccess
	case fault.MalformedInput:
		return StatusInvalidValue
	case fault.Unsupported:
		return StatusWriteNotPermitted
	default:
		return StatusUnlikelyError
	}
}

// Response is the single direct answer to a Request. Err is kept for logging;
// it never crosses the transport.
type Response struct {
	Status Status
	Value  []byte
	Err    error
}

// ErrNoResponse is returned by Submit when a request is deliberately left unanswered.
var ErrNoResponse = errors.New("request produced no response")

// Publisher pushes notifications to subscribed clients.
type Publisher interface {
	Notify(characteristic uuid.UUID, data []byte) error
}
