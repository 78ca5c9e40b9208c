package main

import (
	"errors"

	"github.com/srg/astrod/internal/fault"
	"github.com/srg/astrod/internal/peripheral"
)

// FormatUserError turns an error into a one-line message for the terminal.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, peripheral.ErrBluetoothOff):
		return "Bluetooth is not available; make sure it is powered on and this process may use it (" + err.Error() + ")"
	case errors.Is(err, peripheral.ErrAdvertise):
		return "could not start advertising: " + err.Error()
	}

	switch fault.KindOf(err) {
	case fault.Connection:
		return "camera is not reachable: " + err.Error()
	case fault.MalformedInput:
		return "invalid input: " + err.Error()
	case fault.Unsupported:
		return "not supported: " + err.Error()
	case fault.DriverRejected:
		return "camera rejected the request: " + err.Error()
	case fault.Decode:
		return "could not decode payload: " + err.Error()
	default:
		return err.Error()
	}
}
