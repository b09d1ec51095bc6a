package scanner

import "github.com/srg/bluuki/internal/event"

// Sink receives everything the scanner produces.
// Implementations must not block; the controller calls them from its loop.
type Sink interface {
	// Emit delivers a status or measurement event.
	Emit(ev event.Event)
	// Warn delivers an out-of-band warning such as a rejected command.
	Warn(msg string)
	// ScanState reports the scan indicator after a completed start or stop.
	ScanState(active bool)
}
