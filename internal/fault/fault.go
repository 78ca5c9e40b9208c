// Package fault holds the error taxonomy shared by the camera, settings,
// wire and dispatcher packages.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the caller should react to it.
type Kind string

const (
	// Connection means the camera was unreachable; retrying the operation may succeed.
	Connection Kind = "connection_failure"
	// MalformedInput means a request payload was rejected before any driver call.
	MalformedInput Kind = "malformed_input"
	// Unsupported means the operation is not valid for the target setting kind.
	Unsupported Kind = "unsupported_operation"
	// DriverRejected means the driver was called and refused or failed.
	DriverRejected Kind = "driver_rejected"
	// Decode means wire bytes could not be turned into a record.
	Decode Kind = "decode_failure"
	// Unknown is returned by KindOf for errors outside the taxonomy.
	Unknown Kind = "unknown"
)

// Error carries a Kind plus the operation that failed and an optional cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Kind)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is to match any *Error of the same Kind
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrConnection     = &Error{Kind: Connection}
	ErrMalformedInput = &Error{Kind: MalformedInput}
	ErrUnsupported    = &Error{Kind: Unsupported}
	ErrDriverRejected = &Error{Kind: DriverRejected}
	ErrDecode         = &Error{Kind: Decode}
)

// New builds an *Error with a formatted message.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and op to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}
