// Package device models what the scanner sees of the BLE world: the local
// adapter's operating state, raw advertisements, and the peripheral record
// built from each advertisement.
//
// It also defines the error taxonomy shared by radio backends:
//   - ErrBluetoothOff, ErrUnsupported, ErrUnauthorized for adapter problems
//   - ScanOperationError for start/stop requests that did not complete
package device
