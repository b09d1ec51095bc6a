package device

import (
	"errors"
	"fmt"
	"strings"
)

// Adapter errors
var (
	ErrBluetoothOff    = errors.New("bluetooth is turned off")
	ErrUnsupported     = errors.New("unsupported")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyScanning = errors.New("already scanning")
	ErrScanOperation   = errors.New("scan operation failed")
)

// ScanOperationError reports a start or stop request that did not complete.
// It matches ErrScanOperation with errors.Is and unwraps to the backend cause.
type ScanOperationError struct {
	Op  string // "start" or "stop"
	Err error
}

func (e *ScanOperationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s scan: %s", e.Op, ErrScanOperation)
	}
	return fmt.Sprintf("%s scan: %s: %v", e.Op, ErrScanOperation, e.Err)
}

func (e *ScanOperationError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrScanOperation) regardless of the cause
func (e *ScanOperationError) Is(target error) bool {
	return target == ErrScanOperation
}

// StateForError maps an adapter error to the state it implies.
func StateForError(err error) AdapterState {
	switch {
	case err == nil:
		return StatePoweredOn
	case errors.Is(err, ErrBluetoothOff):
		return StatePoweredOff
	case errors.Is(err, ErrUnsupported):
		return StateUnsupported
	case errors.Is(err, ErrUnauthorized):
		return StateUnauthorized
	default:
		return StateUnknown
	}
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// NormalizeError maps known adapter error strings to the sentinel errors above.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBluetoothOff) || errors.Is(err, ErrUnsupported) || errors.Is(err, ErrUnauthorized) {
		return err
	}

	msg := err.Error()
	switch {
	case containsIgnoreCase(msg, "bluetooth is turned off"),
		containsIgnoreCase(msg, "is bluetooth turned on"),
		containsIgnoreCase(msg, "powered off"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "operation not permitted"),
		containsIgnoreCase(msg, "permission denied"),
		containsIgnoreCase(msg, "not authorized"):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case containsIgnoreCase(msg, "no such device"),
		containsIgnoreCase(msg, "not supported"),
		containsIgnoreCase(msg, "no adapter"):
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	default:
		return err
	}
}

// Advertisement is a raw BLE advertisement as delivered by a radio backend.
type Advertisement interface {
	LocalName() string
	ManufacturerData() []byte
	ServiceData() []ServiceData
	Services() []string
	TxPowerLevel() int

	RSSI() int
	Addr() string
}

// ServiceData is a service-scoped advertisement payload
type ServiceData struct {
	UUID string `json:"uuid"`
	Data []byte `json:"data"`
}

// TxPowerUnknown is reported when an advertisement carries no TX power level
const TxPowerUnknown = 127
