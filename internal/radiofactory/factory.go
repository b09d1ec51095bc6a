// Package radiofactory builds the configured radio backend.
package radiofactory

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/radio"
	"github.com/srg/bluuki/internal/radio/bluez"
	"github.com/srg/bluuki/internal/radio/goble"
	"github.com/srg/bluuki/internal/radio/tinygo"
	"github.com/srg/bluuki/pkg/config"
)

// Radio is an opened backend. Close releases the device and any state source.
type Radio interface {
	radio.Radio
	Close() error
}

// StateSourceFactory connects the adapter power monitor.
// This is a variable so that it can be overridden in tests.
var StateSourceFactory = func(adapter string, logger *logrus.Logger) (radio.StateSource, error) {
	return bluez.Connect(adapter, logger)
}

// RadioFactory creates and opens the radio selected by cfg.
// This is a variable so that it can be overridden in tests.
var RadioFactory = func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Radio, error) {
	var src radio.StateSource
	if cfg.Radio.PowerMonitor == config.PowerMonitorBlueZ {
		s, err := StateSourceFactory(cfg.Radio.Adapter, logger)
		if err != nil {
			// the scan can still run; state changes will only come from scan errors
			logger.WithError(err).Warn("Adapter power monitor unavailable")
		} else {
			src = s
		}
	}

	var r interface {
		Radio
		Open(ctx context.Context) error
	}
	switch cfg.Radio.Backend {
	case config.BackendGoBLE:
		r = goble.New(src, cfg.Radio.StartSettle, logger)
	case config.BackendTinyGo:
		r = tinygo.New(src, []string{cfg.Magnetic.ServiceTag}, cfg.Radio.StartSettle, logger)
	default:
		if src != nil {
			_ = src.Close()
		}
		return nil, fmt.Errorf("unsupported radio backend %q", cfg.Radio.Backend)
	}

	if err := r.Open(ctx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("open %s radio: %w", cfg.Radio.Backend, err)
	}

	logger.WithFields(logrus.Fields{
		"backend":       cfg.Radio.Backend,
		"power_monitor": cfg.Radio.PowerMonitor,
		"state":         r.State(),
	}).Info("Radio opened")
	return r, nil
}
