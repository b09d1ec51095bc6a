// Package tinygo is the radio backend built on tinygo.org/x/bluetooth.
//
// tinygo payloads carry no TX power level, so it is always reported unknown.
// Service UUID lists can only be queried one UUID at a time; see watchedUUID.
package tinygo

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/radio"
)

// Radio scans through a tinygo bluetooth adapter.
type Radio struct {
	radio.Hub

	runner  radio.Runner
	adapter Adapter
	src     radio.StateSource
	watch   []string
	logger  *logrus.Logger
}

var _ radio.Radio = (*Radio)(nil)

// New creates a tinygo radio. watch lists service UUIDs that must be reported
// in Peripheral.Services even when no scan filter names them. src may be nil.
func New(src radio.StateSource, watch []string, settle time.Duration, logger *logrus.Logger) *Radio {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Radio{src: src, watch: watch, logger: logger}
	r.runner = radio.Runner{Name: "tinygo", Settle: settle, Logger: logger}
	r.runner.OnExit = func(err error) {
		r.ReportState(device.StateForError(err))
	}
	return r
}

// Open enables the adapter and seeds the adapter state.
func (r *Radio) Open(ctx context.Context) error {
	adapter := AdapterFactory()
	if err := adapter.Enable(); err != nil {
		err = device.NormalizeError(err)
		r.logger.WithError(err).Warn("Failed to enable BLE adapter")
		r.SetState(device.StateForError(err))
		return nil
	}
	r.adapter = adapter

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
	adapter := r.adapter
	if adapter == nil {
		r.runner.Start(func(context.Context) error {
			return device.ErrUnsupported
		}, done)
		return
	}

	filter := device.NormalizeUUIDs(serviceUUIDs)
	watched, errs := joinWatched(filter, r.watch)
	for _, err := range errs {
		r.logger.WithError(err).Warn("Ignoring service UUID")
	}
	if !allowDuplicates {
		// tinygo reports every advertisement; duplicates are not filtered
		r.logger.Debug("Duplicate filtering is not supported by the tinygo backend")
	}

	r.runner.Start(func(ctx context.Context) error {
		stop := context.AfterFunc(ctx, func() {
			if err := adapter.StopScan(); err != nil {
				r.logger.WithError(err).Debug("StopScan failed")
			}
		})
		defer stop()

		err := adapter.Scan(func(res Result) {
			p := device.NewPeripheral(newAdvertisement(res, watched))
			if radio.MatchesServices(p, filter) {
				r.Discover(p)
			}
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}, done)
}

func (r *Radio) StopScanning(done func(error)) {
	r.runner.Stop(nil, done)
}

// Close stops any running scan and releases the state source.
func (r *Radio) Close() error {
	stopped := make(chan struct{})
	r.runner.Stop(nil, func(error) { close(stopped) })
	<-stopped

	if r.src != nil {
		return r.src.Close()
	}
	return nil
}
