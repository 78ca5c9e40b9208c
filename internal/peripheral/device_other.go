//go:build !darwin && !linux

package peripheral

import (
	"fmt"
	"runtime"

	"github.com/go-ble/ble"
)

func newDevice() (ble.Device, error) {
	return nil, fmt.Errorf("%w: no BLE stack for %s", ErrBluetoothOff, runtime.GOOS)
}
