package beacon

// MagneticServiceTag is the 16-bit service UUID that marks the magnetic-field payload
const MagneticServiceTag = "b000"

// MagneticSentinel precedes the three axis readings
const MagneticSentinel byte = 0xFF

const magneticPayloadLength = 6

// MagneticField is one magnetometer sample.
type MagneticField struct {
	Raw []byte // payload starting at the sentinel byte
	X   int16
	Y   int16
	Z   int16
}

// Combine joins two bytes into a big-endian 16-bit value interpreted as
// two's complement, so 0xFF 0xFE yields -2.
func Combine(hi, lo byte) int16 {
	return int16(uint16(hi)<<8 | uint16(lo))
}

// DecodeMagneticField finds the first sentinel byte and decodes the X, Y and Z
// readings that follow it. Reports false when there is no sentinel or fewer
// than six bytes follow it.
func DecodeMagneticField(data []byte) (*MagneticField, bool) {
	for i, b := range data {
		if b != MagneticSentinel {
			continue
		}
		if len(data)-(i+1) < magneticPayloadLength {
			return nil, false
		}
		p := data[i+1:]
		return &MagneticField{
			Raw: append([]byte(nil), data[i:]...),
			X:   Combine(p[0], p[1]),
			Y:   Combine(p[2], p[3]),
			Z:   Combine(p[4], p[5]),
		}, true
	}
	return nil, false
}
