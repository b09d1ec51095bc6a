package scanner

import (
	"time"

	"github.com/srg/bluuki/internal/beacon"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/event"
)

// Assembler turns a filtered peripheral and its decoded payloads into a measurement.
type Assembler struct {
	hostID string
	clock  func() time.Time
}

// NewAssembler stamps measurements with hostID. A nil clock uses time.Now.
func NewAssembler(hostID string, clock func() time.Time) *Assembler {
	if clock == nil {
		clock = time.Now
	}
	return &Assembler{hostID: hostID, clock: clock}
}

// Assemble always returns a measurement; ib and mag are attached when non-nil.
func (a *Assembler) Assemble(p device.Peripheral, ib *beacon.IBeacon, mag *beacon.MagneticField) *event.Measurement {
	return &event.Measurement{
		PeripheralUUID: p.UUID,
		LocalName:      p.LocalName,
		DetectedAt:     a.clock(),
		DetectedBy:     a.hostID,
		Advertisement: event.Advertisement{
			LocalName:        p.LocalName,
			ManufacturerData: p.ManufacturerData,
			ServiceData:      p.ServiceData,
			ServiceUUIDs:     p.Services,
			TxPowerLevel:     p.TxPowerLevel,
		},
		RSSI:     p.RSSI,
		IBeacon:  ib,
		Magnetic: mag,
	}
}
