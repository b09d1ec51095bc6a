package main

import (
	"errors"
	"fmt"

	"github.com/srg/bluuki/internal/device"
)

// FormatUserError turns adapter sentinels into an actionable message.
// Other errors are printed as they are.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, device.ErrBluetoothOff):
		return fmt.Sprintf("Bluetooth is turned off, enable it and retry (%v)", err)
	case errors.Is(err, device.ErrUnauthorized):
		return fmt.Sprintf("not allowed to use Bluetooth; on Linux run as root or grant CAP_NET_ADMIN, on macOS allow Bluetooth access for the terminal (%v)", err)
	case errors.Is(err, device.ErrUnsupported):
		return fmt.Sprintf("no usable Bluetooth adapter (%v)", err)
	default:
		return err.Error()
	}
}
