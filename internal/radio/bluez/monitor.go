// Package bluez reports the adapter power state from BlueZ over the D-Bus
// system bus. It is a radio.StateSource for backends whose BLE stack has no
// state notifications of its own.
package bluez

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/radio"
)

const (
	busName             = "org.bluez"
	adapterInterface    = "org.bluez.Adapter1"
	propertiesInterface = "org.freedesktop.DBus.Properties"
	propertiesChanged   = "PropertiesChanged"
)

// ErrSignalsClosed is returned by Watch when the bus stops delivering signals
var ErrSignalsClosed = errors.New("bluez: signal channel closed")

// busConn is the slice of *dbus.Conn the monitor uses
type busConn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
	Close() error
}

// Monitor follows the Powered and PowerState properties of one BlueZ adapter.
type Monitor struct {
	conn   busConn
	path   dbus.ObjectPath
	logger *logrus.Logger
}

var _ radio.StateSource = (*Monitor)(nil)

// Connect opens the system bus and monitors adapter (e.g. "hci0").
func Connect(adapter string, logger *logrus.Logger) (*Monitor, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", mapError(err))
	}
	return newMonitor(conn, adapter, logger), nil
}

func newMonitor(conn busConn, adapter string, logger *logrus.Logger) *Monitor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Monitor{
		conn:   conn,
		path:   dbus.ObjectPath("/org/bluez/" + adapter),
		logger: logger,
	}
}

// State reads the current power state. PowerState (BlueZ 5.59+) is preferred
// because it also reports transitions; older daemons only have Powered.
func (m *Monitor) State() (device.AdapterState, error) {
	obj := m.conn.Object(busName, m.path)

	if v, err := obj.GetProperty(adapterInterface + ".PowerState"); err == nil {
		if s, ok := v.Value().(string); ok {
			return powerState(s), nil
		}
	}

	v, err := obj.GetProperty(adapterInterface + ".Powered")
	if err != nil {
		err = mapError(err)
		return device.StateForError(err), fmt.Errorf("read %s power state: %w", m.path, err)
	}
	powered, ok := v.Value().(bool)
	if !ok {
		return device.StateUnknown, fmt.Errorf("read %s power state: unexpected Powered value %v", m.path, v)
	}
	return poweredState(powered), nil
}

// Watch calls fn for every power change of the adapter until ctx is done.
func (m *Monitor) Watch(ctx context.Context, fn func(device.AdapterState)) error {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(m.path),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember(propertiesChanged),
	}
	if err := m.conn.AddMatchSignal(match...); err != nil {
		return fmt.Errorf("subscribe to %s: %w", m.path, mapError(err))
	}
	defer func() {
		if err := m.conn.RemoveMatchSignal(match...); err != nil {
			m.logger.WithError(err).Debug("Failed to remove D-Bus match")
		}
	}()

	signals := make(chan *dbus.Signal, 16)
	m.conn.Signal(signals)
	defer m.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return ErrSignalsClosed
			}
			if state, ok := m.stateFromSignal(sig); ok {
				fn(state)
			}
		}
	}
}

// Close releases the bus connection.
func (m *Monitor) Close() error {
	return m.conn.Close()
}

func (m *Monitor) stateFromSignal(sig *dbus.Signal) (device.AdapterState, bool) {
	if sig == nil || sig.Path != m.path || sig.Name != propertiesInterface+"."+propertiesChanged {
		return device.StateUnknown, false
	}
	if len(sig.Body) < 2 {
		return device.StateUnknown, false
	}
	if iface, _ := sig.Body[0].(string); iface != adapterInterface {
		return device.StateUnknown, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return device.StateUnknown, false
	}

	if v, ok := changed["PowerState"]; ok {
		if s, ok := v.Value().(string); ok {
			return powerState(s), true
		}
	}
	if v, ok := changed["Powered"]; ok {
		if powered, ok := v.Value().(bool); ok {
			return poweredState(powered), true
		}
	}
	return device.StateUnknown, false
}

func powerState(s string) device.AdapterState {
	switch s {
	case "on":
		return device.StatePoweredOn
	case "off", "off-blocked":
		return device.StatePoweredOff
	case "off-enabling", "on-disabling":
		return device.StateResetting
	default:
		return device.StateUnknown
	}
}

func poweredState(powered bool) device.AdapterState {
	if powered {
		return device.StatePoweredOn
	}
	return device.StatePoweredOff
}

// mapError converts D-Bus error names to adapter sentinel errors
func mapError(err error) error {
	var dbusErr dbus.Error
	name := ""
	if errors.As(err, &dbusErr) {
		name = dbusErr.Name
	} else if pe := (*dbus.Error)(nil); errors.As(err, &pe) && pe != nil {
		name = pe.Name
	}

	switch name {
	case "org.freedesktop.DBus.Error.AccessDenied", "org.bluez.Error.NotAuthorized":
		return fmt.Errorf("%w: %v", device.ErrUnauthorized, err)
	case "org.freedesktop.DBus.Error.UnknownObject",
		"org.freedesktop.DBus.Error.ServiceUnknown",
		"org.freedesktop.DBus.Error.UnknownMethod",
		"org.freedesktop.DBus.Error.UnknownInterface":
		return fmt.Errorf("%w: %v", device.ErrUnsupported, err)
	default:
		return device.NormalizeError(err)
	}
}
