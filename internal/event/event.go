// Package event defines the records the scanner emits: adapter/scan status
// updates and per-advertisement measurements.
package event

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/srg/bluuki/internal/beacon"
	"github.com/srg/bluuki/internal/device"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind distinguishes the two event shapes
type Kind int

const (
	KindStatus Kind = iota
	KindMeasurement
)

func (k Kind) String() string {
	if k == KindStatus {
		return "status"
	}
	return "measurement"
}

// Event is one outbound record
type Event interface {
	Kind() Kind
	json.Marshaler
}

// Status reports a scan lifecycle transition or failure.
type Status struct {
	Error       bool
	StateChange bool
	State       device.AdapterState
	Reason      string // set for scan operation failures
}

func (s *Status) Kind() Kind { return KindStatus }

// MarshalJSON renders {"statusUpdate":true,"error":…,"stateChange":…,"state":…}
func (s *Status) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	om.Set("statusUpdate", true)
	om.Set("error", s.Error)
	om.Set("stateChange", s.StateChange)
	om.Set("state", s.State.String())
	if s.Reason != "" {
		om.Set("reason", s.Reason)
	}
	return json.Marshal(om)
}

// Advertisement echoes the raw advertisement fields of a measurement
type Advertisement struct {
	LocalName        string
	ManufacturerData []byte
	ServiceData      []device.ServiceData
	ServiceUUIDs     []string
	TxPowerLevel     int
}

// Measurement is emitted for every advertisement of a target peripheral.
type Measurement struct {
	PeripheralUUID string
	LocalName      string
	DetectedAt     time.Time
	DetectedBy     string
	Advertisement  Advertisement
	RSSI           int
	IBeacon        *beacon.IBeacon       // nil when the payload is not iBeacon framed
	Magnetic       *beacon.MagneticField // nil when no magnetic sample was decoded
}

func (m *Measurement) Kind() Kind { return KindMeasurement }

// MarshalJSON renders the measurement with a fixed key order; decoded iBeacon
// fields are flattened into the top level.
func (m *Measurement) MarshalJSON() ([]byte, error) {
	payload := orderedmap.New[string, any]()
	payload.Set("peripheralUuid", m.PeripheralUUID)
	payload.Set("localName", m.LocalName)

	om := orderedmap.New[string, any]()
	om.Set("payload", payload)
	om.Set("peripheralUuid", m.PeripheralUUID)
	om.Set("localName", m.LocalName)
	om.Set("detectedAt", m.DetectedAt.UnixMilli())
	om.Set("detectedBy", m.DetectedBy)
	om.Set("advertisement", m.Advertisement.ordered())
	om.Set("rssi", m.RSSI)

	if ib := m.IBeacon; ib != nil {
		om.Set("manufacturerUuid", ib.ProximityHex())
		om.Set("major", ib.Major)
		om.Set("minor", ib.Minor)
		om.Set("measuredPower", ib.MeasuredPower)
		om.Set("accuracy", ib.Accuracy)
		om.Set("proximity", ib.Proximity.String())
	}

	if mag := m.Magnetic; mag != nil {
		data := make([]int, len(mag.Raw))
		for i, b := range mag.Raw {
			data[i] = int(b)
		}
		field := orderedmap.New[string, any]()
		field.Set("data", data)
		field.Set("X", mag.X)
		field.Set("Y", mag.Y)
		field.Set("Z", mag.Z)
		om.Set("magnetfielddata", field)
	}

	return json.Marshal(om)
}

func (a Advertisement) ordered() *orderedmap.OrderedMap[string, any] {
	serviceData := make([]*orderedmap.OrderedMap[string, any], 0, len(a.ServiceData))
	for _, sd := range a.ServiceData {
		entry := orderedmap.New[string, any]()
		entry.Set("uuid", sd.UUID)
		entry.Set("data", hex.EncodeToString(sd.Data))
		serviceData = append(serviceData, entry)
	}

	services := a.ServiceUUIDs
	if services == nil {
		services = []string{}
	}

	om := orderedmap.New[string, any]()
	om.Set("localName", a.LocalName)
	if a.ManufacturerData != nil {
		om.Set("manufacturerData", hex.EncodeToString(a.ManufacturerData))
	} else {
		om.Set("manufacturerData", nil)
	}
	om.Set("serviceData", serviceData)
	om.Set("serviceUuids", services)
	if a.TxPowerLevel != device.TxPowerUnknown {
		om.Set("txPowerLevel", a.TxPowerLevel)
	}
	return om
}
