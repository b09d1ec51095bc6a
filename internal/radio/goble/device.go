package goble

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/srg/bluuki/internal/device"
)

// ScanningDevice is the slice of a go-ble device used for passive scanning
type ScanningDevice interface {
	// Scan blocks until ctx is done or the scan fails
	Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error
	// Stop releases the HCI / CoreBluetooth handle
	Stop() error
}

// bleScanningDevice wraps ble.Device to implement ScanningDevice
type bleScanningDevice struct {
	dev ble.Device
}

// Scan converts every ble.Advertisement to a device.Advertisement before handing it on
func (s *bleScanningDevice) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	err := s.dev.Scan(ctx, allowDup, func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	})
	return device.NormalizeError(err)
}

func (s *bleScanningDevice) Stop() error {
	return device.NormalizeError(s.dev.Stop())
}

// DeviceFactory opens the platform device. It is a variable so tests can replace it.
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = func() (ScanningDevice, error) {
	dev, err := newBLEDevice()
	if err != nil {
		return nil, device.NormalizeError(err)
	}
	return &bleScanningDevice{dev: dev}, nil
}
