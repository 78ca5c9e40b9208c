//go:build linux

package peripheral

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

func newDevice() (ble.Device, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		return nil, err
	}
	return dev, nil
}
