// Package beacon decodes proximity-beacon payloads carried in BLE advertisements.
//
// Two fixed binary layouts are understood:
//
//	iBeacon manufacturer data (25+ bytes, big-endian):
//	  [0:2]   company ID (0x004c for Apple, little-endian)
//	  [2:4]   beacon type and length (0x02 0x15)
//	  [4:20]  proximity UUID
//	  [20:22] major
//	  [22:24] minor
//	  [24]    measured power at 1 m (signed dBm)
//
//	magnetic-field payload (advertised with service 0xb000):
//	  ... 0xFF xHi xLo yHi yLo zHi zLo ...
//
// All decoders are total: malformed or short input reports absence, never an error.
package beacon
