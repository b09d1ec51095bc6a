package testutils

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// IBeaconPayload builds iBeacon framed manufacturer data.
//
//	data := NewIBeaconPayload().
//	    WithUUID(uuid.MustParse("e2c56db5-dffb-48d2-b060-d0f5a71096e0")).
//	    WithMajor(1).WithMinor(2).WithMeasuredPower(-59).
//	    Build()
type IBeaconPayload struct {
	prefix        []byte
	uuid          uuid.UUID
	major         uint16
	minor         uint16
	measuredPower int8
}

// NewIBeaconPayload starts from Apple's company ID and the 0x02 0x15 iBeacon header.
func NewIBeaconPayload() *IBeaconPayload {
	return &IBeaconPayload{
		prefix:        []byte{0x4c, 0x00, 0x02, 0x15},
		measuredPower: -59,
	}
}

func (p *IBeaconPayload) WithUUID(id uuid.UUID) *IBeaconPayload {
	p.uuid = id
	return p
}

func (p *IBeaconPayload) WithMajor(major uint16) *IBeaconPayload {
	p.major = major
	return p
}

func (p *IBeaconPayload) WithMinor(minor uint16) *IBeaconPayload {
	p.minor = minor
	return p
}

func (p *IBeaconPayload) WithMeasuredPower(power int8) *IBeaconPayload {
	p.measuredPower = power
	return p
}

// WithPrefix replaces the 4 header bytes. Shorter prefixes are zero padded.
func (p *IBeaconPayload) WithPrefix(prefix ...byte) *IBeaconPayload {
	p.prefix = prefix
	return p
}

// Build returns the 25 byte payload.
func (p *IBeaconPayload) Build() []byte {
	data := make([]byte, 25)
	copy(data[0:4], p.prefix)
	copy(data[4:20], p.uuid[:])
	binary.BigEndian.PutUint16(data[20:22], p.major)
	binary.BigEndian.PutUint16(data[22:24], p.minor)
	data[24] = byte(p.measuredPower)
	return data
}
