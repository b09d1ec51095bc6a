package radio

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/groutine"
)

// Hub keeps subscriptions and the last known adapter state for a backend.
// Handlers are invoked outside the lock.
type Hub struct {
	mu          sync.RWMutex
	state       device.AdapterState
	discover    []DiscoverHandler
	stateChange []StateHandler
}

// OnDiscover subscribes h to discovery events
func (h *Hub) OnDiscover(fn DiscoverHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discover = append(h.discover, fn)
}

// OnAdapterStateChange subscribes fn to adapter state changes
func (h *Hub) OnAdapterStateChange(fn StateHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateChange = append(h.stateChange, fn)
}

// RemoveAllSubscriptions drops every handler
func (h *Hub) RemoveAllSubscriptions() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discover = nil
	h.stateChange = nil
}

// State returns the last known adapter state
func (h *Hub) State() device.AdapterState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// SetState records s and notifies subscribers if it differs from the current state.
// Returns true when the state changed.
func (h *Hub) SetState(s device.AdapterState) bool {
	handlers, changed := h.store(s, false)
	if !changed {
		return false
	}
	notifyState(handlers, s)
	return true
}

// ReportState records s and notifies subscribers even when s is the current
// state. A scan that dies with the same error twice must reach the controller
// both times.
func (h *Hub) ReportState(s device.AdapterState) {
	handlers, _ := h.store(s, true)
	notifyState(handlers, s)
}

func (h *Hub) store(s device.AdapterState, force bool) ([]StateHandler, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == s && !force {
		return nil, false
	}
	h.state = s
	return append([]StateHandler(nil), h.stateChange...), true
}

func notifyState(handlers []StateHandler, s device.AdapterState) {
	for _, fn := range handlers {
		fn(s)
	}
}

// Discover dispatches p to discovery subscribers
func (h *Hub) Discover(p device.Peripheral) {
	h.mu.RLock()
	handlers := append([]DiscoverHandler(nil), h.discover...)
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(p)
	}
}

// Follow seeds the hub from src and keeps it in sync until ctx is done.
func (h *Hub) Follow(ctx context.Context, src StateSource, logger *logrus.Logger) error {
	if logger == nil {
		logger = logrus.New()
	}

	state, err := src.State()
	if err != nil {
		return err
	}
	h.SetState(state)

	groutine.Go(ctx, "adapter-state-watch", func(ctx context.Context) {
		err := src.Watch(ctx, func(s device.AdapterState) {
			logger.WithField("state", s).Debug("Adapter state reported")
			h.SetState(s)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Adapter state watch ended")
		}
	})
	return nil
}
