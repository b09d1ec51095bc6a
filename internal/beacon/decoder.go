package beacon

// Decoder turns raw advertisement bytes into beacon measurements.
type Decoder interface {
	DecodeIBeacon(data []byte, rssi float64) (*IBeacon, bool)
	DecodeMagneticField(data []byte) (*MagneticField, bool)
}

type defaultDecoder struct{}

// Default decodes with the package-level functions.
var Default Decoder = defaultDecoder{}

func (defaultDecoder) DecodeIBeacon(data []byte, rssi float64) (*IBeacon, bool) {
	return DecodeIBeacon(data, rssi)
}

func (defaultDecoder) DecodeMagneticField(data []byte) (*MagneticField, bool) {
	return DecodeMagneticField(data)
}
