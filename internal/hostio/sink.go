package hostio

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/event"
	"github.com/srg/bluuki/internal/ringchan"
)

// EventSink buffers events for a writer and routes warnings and the scan
// indicator to the logger. It never blocks: when the writer falls behind the
// oldest measurement is dropped. Status events are only dropped when the
// whole buffer holds statuses.
type EventSink struct {
	ring   *ringchan.RingChannel[event.Event]
	logger *logrus.Logger
}

// NewEventSink creates a sink buffering up to capacity events.
func NewEventSink(capacity int, logger *logrus.Logger) *EventSink {
	if logger == nil {
		logger = logrus.New()
	}
	ring := ringchan.New[event.Event](capacity).Retain(func(ev event.Event) bool {
		return ev.Kind() == event.KindStatus
	})
	return &EventSink{ring: ring, logger: logger}
}

func (s *EventSink) Emit(ev event.Event) {
	if s.ring.Send(ev) {
		s.logger.WithFields(logrus.Fields{
			"kind":        ev.Kind(),
			"overwritten": s.ring.GetMetrics().Overwritten,
		}).Debug("Event buffer full, dropped oldest event")
	}
}

func (s *EventSink) Warn(msg string) {
	s.logger.Warn(msg)
}

func (s *EventSink) ScanState(active bool) {
	indicator := "stopped"
	if active {
		indicator = "started"
	}
	s.logger.WithField("indicator", indicator).Info("Scan state")
}

// Events is drained by the writer
func (s *EventSink) Events() <-chan event.Event {
	return s.ring.C()
}

// Close ends the event stream; buffered events remain readable.
func (s *EventSink) Close() {
	s.ring.Close()
}

func (s *EventSink) Metrics() ringchan.Metrics {
	return s.ring.GetMetrics()
}
