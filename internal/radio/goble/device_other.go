//go:build !linux && !darwin

package goble

import (
	"fmt"
	"runtime"

	"github.com/go-ble/ble"
	"github.com/srg/bluuki/internal/device"
)

func newBLEDevice() (ble.Device, error) {
	return nil, fmt.Errorf("%w: go-ble has no %s support", device.ErrUnsupported, runtime.GOOS)
}
