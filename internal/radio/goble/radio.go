// Package goble is the radio backend built on github.com/go-ble/ble.
package goble

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/radio"
)

// Radio scans through a go-ble device. Without a StateSource the adapter is
// assumed powered on once the device opens, and scan errors are the only
// source of state changes.
type Radio struct {
	radio.Hub

	runner radio.Runner
	dev    ScanningDevice
	src    radio.StateSource
	logger *logrus.Logger
}

var _ radio.Radio = (*Radio)(nil)

// New creates a go-ble radio. src may be nil.
func New(src radio.StateSource, settle time.Duration, logger *logrus.Logger) *Radio {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Radio{src: src, logger: logger}
	r.runner = radio.Runner{Name: "goble", Settle: settle, Logger: logger}
	r.runner.OnExit = func(err error) {
		r.ReportState(device.StateForError(err))
	}
	return r
}

// Open acquires the device and seeds the adapter state. A device that cannot
// be opened is not an error: the state records why and scans will fail.
func (r *Radio) Open(ctx context.Context) error {
	dev, err := DeviceFactory()
	if err != nil {
		r.logger.WithError(err).Warn("Failed to open BLE device")
		r.SetState(device.StateForError(err))
		return nil
	}
	r.dev = dev

	if r.src == nil {
		r.SetState(device.StatePoweredOn)
		return nil
	}
	if err := r.Follow(ctx, r.src, r.logger); err != nil {
		err = device.NormalizeError(err)
		r.logger.WithError(err).Warn("Adapter power state unavailable")
		r.SetState(device.StateForError(err))
	}
	return nil
}

func (r *Radio) StartScanning(serviceUUIDs []string, allowDuplicates bool, done func(error)) {
	dev := r.dev
	if dev == nil {
		r.runner.Start(func(context.Context) error {
			return device.ErrUnsupported
		}, done)
		return
	}

	uuids := device.NormalizeUUIDs(serviceUUIDs)
	r.logger.WithFields(logrus.Fields{
		"services":         uuids,
		"allow_duplicates": allowDuplicates,
	}).Debug("Starting go-ble scan")

	r.runner.Start(func(ctx context.Context) error {
		return dev.Scan(ctx, allowDuplicates, func(adv device.Advertisement) {
			p := device.NewPeripheral(adv)
			if radio.MatchesServices(p, uuids) {
				r.Discover(p)
			}
		})
	}, done)
}

// StopScanning cancels the scan context; go-ble disables scanning when Scan returns.
func (r *Radio) StopScanning(done func(error)) {
	r.runner.Stop(nil, done)
}

// Close stops any running scan and releases the device and the state source.
func (r *Radio) Close() error {
	stopped := make(chan struct{})
	r.runner.Stop(nil, func(error) { close(stopped) })
	<-stopped

	var firstErr error
	if r.dev != nil {
		if err := r.dev.Stop(); err != nil {
			firstErr = err
		}
	}
	if r.src != nil {
		if err := r.src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
