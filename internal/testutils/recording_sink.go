package testutils

import (
	"sync"

	"github.com/srg/bluuki/internal/event"
)

// RecordingSink collects everything the scanner emits. Safe for concurrent use.
type RecordingSink struct {
	mu         sync.Mutex
	events     []event.Event
	warnings   []string
	scanStates []bool
}

func (s *RecordingSink) Emit(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *RecordingSink) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

func (s *RecordingSink) ScanState(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanStates = append(s.scanStates, active)
}

// Events returns a copy of every emitted event in order.
func (s *RecordingSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}

// Statuses returns the emitted status events in order.
func (s *RecordingSink) Statuses() []*event.Status {
	var out []*event.Status
	for _, ev := range s.Events() {
		if st, ok := ev.(*event.Status); ok {
			out = append(out, st)
		}
	}
	return out
}

// Measurements returns the emitted measurement events in order.
func (s *RecordingSink) Measurements() []*event.Measurement {
	var out []*event.Measurement
	for _, ev := range s.Events() {
		if m, ok := ev.(*event.Measurement); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *RecordingSink) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

func (s *RecordingSink) ScanStates() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.scanStates...)
}
