package tinygo

import (
	"tinygo.org/x/bluetooth"
)

// Payload is the part of a tinygo advertisement payload the scanner reads
type Payload interface {
	LocalName() string
	HasServiceUUID(bluetooth.UUID) bool
	ManufacturerData() []bluetooth.ManufacturerDataElement
	ServiceData() []bluetooth.ServiceDataElement
}

// Result is one scan report
type Result struct {
	Address string
	RSSI    int16
	Payload Payload
}

// Adapter is the slice of *bluetooth.Adapter used for scanning.
// Scan blocks until StopScan is called.
type Adapter interface {
	Enable() error
	Scan(fn func(Result)) error
	StopScan() error
}

type bluetoothAdapter struct {
	a *bluetooth.Adapter
}

func (b *bluetoothAdapter) Enable() error { return b.a.Enable() }

func (b *bluetoothAdapter) Scan(fn func(Result)) error {
	return b.a.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		fn(Result{Address: r.Address.String(), RSSI: r.RSSI, Payload: r})
	})
}

func (b *bluetoothAdapter) StopScan() error { return b.a.StopScan() }

// AdapterFactory returns the adapter to scan with. Tests replace it.
var AdapterFactory = func() Adapter {
	return &bluetoothAdapter{a: bluetooth.DefaultAdapter}
}
