package beacon

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/google/uuid"
)

const (
	// IBeaconMinLength is the shortest manufacturer data that carries iBeacon framing
	IBeaconMinLength = 25

	proximityUUIDOffset = 4
	majorOffset         = 20
	minorOffset         = 22
	measuredPowerOffset = 24
)

// iBeaconPrefix is Apple's company ID (little-endian) followed by type 0x02, length 0x15
var iBeaconPrefix = []byte{0x4c, 0x00, 0x02, 0x15}

// IBeacon is a decoded iBeacon measurement.
type IBeacon struct {
	ProximityUUID uuid.UUID
	Major         uint16
	Minor         uint16
	MeasuredPower int8
	Accuracy      float64
	Proximity     Proximity
}

// ProximityHex renders the proximity UUID as 32 lowercase hex characters.
func (b *IBeacon) ProximityHex() string {
	return hex.EncodeToString(b.ProximityUUID[:])
}

// DecodeIBeacon decodes iBeacon fields from manufacturer data.
// Data shorter than IBeaconMinLength is not an iBeacon and reports false.
// The company/type prefix is not checked; see HasIBeaconPrefix.
func DecodeIBeacon(data []byte, rssi float64) (*IBeacon, bool) {
	if len(data) < IBeaconMinLength {
		return nil, false
	}

	var id uuid.UUID
	copy(id[:], data[proximityUUIDOffset:majorOffset])

	power := int8(data[measuredPowerOffset])
	accuracy := Accuracy(rssi, power)

	return &IBeacon{
		ProximityUUID: id,
		Major:         binary.BigEndian.Uint16(data[majorOffset:minorOffset]),
		Minor:         binary.BigEndian.Uint16(data[minorOffset:measuredPowerOffset]),
		MeasuredPower: power,
		Accuracy:      accuracy,
		Proximity:     Classify(accuracy),
	}, true
}

// HasIBeaconPrefix reports whether data starts with Apple's iBeacon framing.
func HasIBeaconPrefix(data []byte) bool {
	return bytes.HasPrefix(data, iBeaconPrefix)
}
