package beacon

import (
	"fmt"
	"math"
)

// Proximity is the coarse distance band derived from an accuracy estimate.
type Proximity int

const (
	ProximityUnknown Proximity = iota
	ProximityImmediate
	ProximityNear
	ProximityFar
)

// Band upper bounds in meters, exclusive.
const (
	ImmediateLimit = 0.5
	NearLimit      = 4.0
)

func (p Proximity) String() string {
	switch p {
	case ProximityUnknown:
		return "unknown"
	case ProximityImmediate:
		return "immediate"
	case ProximityNear:
		return "near"
	case ProximityFar:
		return "far"
	default:
		return fmt.Sprintf("Proximity(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Proximity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Classify maps an accuracy estimate (meters) to a proximity band.
// Negative accuracy means the distance could not be estimated.
func Classify(accuracy float64) Proximity {
	switch {
	case accuracy < 0 || math.IsNaN(accuracy):
		return ProximityUnknown
	case accuracy < ImmediateLimit:
		return ProximityImmediate
	case accuracy < NearLimit:
		return ProximityNear
	default:
		return ProximityFar
	}
}

// Accuracy estimates the distance in meters to a beacon from the received
// signal strength and the beacon's calibrated power at 1 m, using the
// reference iBeacon ranging curve:
//
//	ratio = rssi / measuredPower
//	ratio < 1:  ratio^10
//	otherwise:  0.89978 * ratio^7.7095 + 0.111
//
// Returns -1 when either input is zero.
func Accuracy(rssi float64, measuredPower int8) float64 {
	if rssi == 0 || measuredPower == 0 {
		return -1
	}

	ratio := rssi / float64(measuredPower)
	if ratio < 1.0 {
		return math.Pow(ratio, 10)
	}
	return 0.89978*math.Pow(ratio, 7.7095) + 0.111
}
