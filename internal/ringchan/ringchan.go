// Package ringchan provides a bounded channel that never blocks its producer.
package ringchan

import (
	"sync"
	"sync/atomic"
)

// RingChannel is a bounded channel-like buffer with overwrite-oldest semantics.
//
// The scanner publishes outbound events through it so that a slow consumer can
// never stall the controller: when the buffer is full the oldest event is
// discarded and counted as overwritten.
//
//	rc := ringchan.New[event.Event](256)
//	rc.Send(ev)            // never blocks
//	for ev := range rc.C() // drained by the host writer
//
// Send after Close is a no-op, so late producers do not panic.
type RingChannel[T any] struct {
	mu      sync.Mutex
	ch      chan T
	closed  bool
	keep    func(T) bool
	metrics Metrics
}

// New creates a RingChannel with the given capacity.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel.
// Consumers can range over it until Close is called.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Retain protects elements for which keep returns true from overflow. A full
// buffer then discards its oldest unprotected element; only when every
// buffered element is protected does it fall back to the oldest one, or to v
// itself when v is unprotected. The order of surviving elements is preserved.
// Call before the first Send.
func (rc *RingChannel[T]) Retain(keep func(T) bool) *RingChannel[T] {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.keep = keep
	return rc
}

// Send inserts v, discarding an element if the buffer is full.
// Returns true if an element was dropped to make room.
func (rc *RingChannel[T]) Send(v T) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		atomic.AddInt64(&rc.metrics.Rejected, 1)
		return false
	}

	select {
	case rc.ch <- v:
		atomic.AddInt64(&rc.metrics.Written, 1)
		return false
	default:
	}

	if rc.keep != nil {
		return rc.sendRetaining(v)
	}

	dropped := false
	select {
	case <-rc.ch:
		atomic.AddInt64(&rc.metrics.Overwritten, 1)
		dropped = true
	default:
	}
	rc.ch <- v
	atomic.AddInt64(&rc.metrics.Written, 1)
	return dropped
}

// sendRetaining drains the buffer, removes one victim and refills it in order.
// rc.mu must be held; as the only sender it cannot overfill the channel.
func (rc *RingChannel[T]) sendRetaining(v T) bool {
	var buf []T
	for drained := false; !drained; {
		select {
		case old := <-rc.ch:
			buf = append(buf, old)
		default:
			drained = true
		}
	}

	victim := -1
	for i, old := range buf {
		if !rc.keep(old) {
			victim = i
			break
		}
	}

	dropped := true
	switch {
	case len(buf) < cap(rc.ch):
		// the consumer made room while we were draining
		dropped = false
	case victim >= 0:
		buf = append(buf[:victim], buf[victim+1:]...)
	case !rc.keep(v):
		for _, old := range buf {
			rc.ch <- old
		}
		atomic.AddInt64(&rc.metrics.Overwritten, 1)
		return true
	default:
		buf = buf[1:]
	}

	for _, old := range buf {
		rc.ch <- old
	}
	rc.ch <- v
	if dropped {
		atomic.AddInt64(&rc.metrics.Overwritten, 1)
	}
	atomic.AddInt64(&rc.metrics.Written, 1)
	return dropped
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Cap returns the channel capacity.
func (rc *RingChannel[T]) Cap() int {
	return cap(rc.ch)
}

// Close closes the underlying channel. Buffered elements remain readable.
func (rc *RingChannel[T]) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.closed {
		return
	}
	rc.closed = true
	close(rc.ch)
}

// GetMetrics returns a snapshot of current metrics values.
func (rc *RingChannel[T]) GetMetrics() Metrics {
	return Metrics{
		Written:     atomic.LoadInt64(&rc.metrics.Written),
		Overwritten: atomic.LoadInt64(&rc.metrics.Overwritten),
		Rejected:    atomic.LoadInt64(&rc.metrics.Rejected),
	}
}

// Metrics counts ring activity
type Metrics struct {
	Written     int64
	Overwritten int64
	Rejected    int64 // sends after Close
}
