package peripheral

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBluetoothOff means the host adapter is missing, powered off or not permitted.
	ErrBluetoothOff = errors.New("bluetooth is not available")
	// ErrAdvertise means the GATT server could not be published.
	ErrAdvertise = errors.New("advertising failed")
)

// NormalizeError maps known go-ble error strings to the sentinels above.
// It ensures consistent handling even if the upstream library changes messages slightly.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBluetoothOff) || errors.Is(err, ErrAdvertise) {
		return err
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "invalid state"),
		containsIgnoreCase(msg, "bluetooth is turned off"),
		containsIgnoreCase(msg, "can't init hci"),
		containsIgnoreCase(msg, "no devices available"),
		containsIgnoreCase(msg, "operation not permitted"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "advertis"):
		return fmt.Errorf("%w: %v", ErrAdvertise, err)
	default:
		return err
	}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
