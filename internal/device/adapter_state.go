package device

import "fmt"

// AdapterState is the operating condition of the local Bluetooth radio.
// Values and their text form follow the names noble reports.
type AdapterState int

const (
	StateUnknown AdapterState = iota
	StateResetting
	StateUnsupported
	StateUnauthorized
	StatePoweredOff
	StatePoweredOn
)

var adapterStateNames = map[AdapterState]string{
	StateUnknown:      "unknown",
	StateResetting:    "resetting",
	StateUnsupported:  "unsupported",
	StateUnauthorized: "unauthorized",
	StatePoweredOff:   "poweredOff",
	StatePoweredOn:    "poweredOn",
}

// String returns the noble name of the state.
func (s AdapterState) String() string {
	if name, ok := adapterStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AdapterState(%d)", int(s))
}

// IsReady reports whether a scan can run. Every state other than
// poweredOn is treated as not ready.
func (s AdapterState) IsReady() bool {
	return s == StatePoweredOn
}

// MarshalText implements encoding.TextMarshaler.
func (s AdapterState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *AdapterState) UnmarshalText(text []byte) error {
	parsed, err := ParseAdapterState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseAdapterState parses a noble state name.
func ParseAdapterState(name string) (AdapterState, error) {
	for state, n := range adapterStateNames {
		if n == name {
			return state, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown adapter state: %q", name)
}
