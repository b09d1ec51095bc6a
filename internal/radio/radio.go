// Package radio defines the capability set the scanner needs from a BLE stack
// and the bookkeeping shared by the backends that provide it.
package radio

import (
	"context"

	"github.com/srg/bluuki/internal/device"
)

// DiscoverHandler receives one peripheral per advertisement
type DiscoverHandler func(device.Peripheral)

// StateHandler receives adapter state changes
type StateHandler func(device.AdapterState)

// Radio is a BLE stack driven by the scan controller.
//
// StartScanning and StopScanning return immediately; done is invoked exactly
// once, from another goroutine, when the request has completed or failed.
type Radio interface {
	OnDiscover(h DiscoverHandler)
	OnAdapterStateChange(h StateHandler)
	State() device.AdapterState
	StartScanning(serviceUUIDs []string, allowDuplicates bool, done func(error))
	StopScanning(done func(error))
	RemoveAllSubscriptions()
}

// StateSource reports the adapter power state from outside the BLE stack.
type StateSource interface {
	State() (device.AdapterState, error)
	// Watch calls fn for every state change until ctx is done.
	Watch(ctx context.Context, fn func(device.AdapterState)) error
	Close() error
}

// MatchesServices reports whether p advertises any of uuids.
// An empty filter matches every peripheral.
func MatchesServices(p device.Peripheral, uuids []string) bool {
	if len(uuids) == 0 {
		return true
	}
	for _, u := range uuids {
		if p.HasService(u) {
			return true
		}
	}
	return false
}
