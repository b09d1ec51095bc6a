package testutils

import (
	"sync"

	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/radio"
	"github.com/stretchr/testify/mock"
)

// MockRadio is a radio.Radio backed by testify/mock for the scan calls and a
// real radio.Hub for subscriptions and adapter state.
//
// Completions are delivered from a new goroutine, as real backends do. Set a
// gate with HoldCompletions to keep them pending until ReleaseCompletions.
//
//	r := testutils.NewMockRadio(device.StatePoweredOff)
//	r.On("StartScanning", mock.Anything, true).Return(nil)
//	r.SetState(device.StatePoweredOn) // notifies subscribers
type MockRadio struct {
	mock.Mock
	radio.Hub

	mu   sync.Mutex
	gate chan struct{}
}

var _ radio.Radio = (*MockRadio)(nil)

// NewMockRadio creates a MockRadio reporting the given initial adapter state.
func NewMockRadio(initial device.AdapterState) *MockRadio {
	r := &MockRadio{}
	r.Hub.SetState(initial)
	return r
}

// ExpectScanCalls registers successful StartScanning and StopScanning expectations.
func (r *MockRadio) ExpectScanCalls() *MockRadio {
	r.On("StartScanning", mock.Anything, mock.Anything).Return(nil)
	r.On("StopScanning").Return(nil)
	return r
}

func (r *MockRadio) StartScanning(serviceUUIDs []string, allowDuplicates bool, done func(error)) {
	args := r.Called(serviceUUIDs, allowDuplicates)
	r.complete(done, args.Error(0))
}

func (r *MockRadio) StopScanning(done func(error)) {
	args := r.Called()
	r.complete(done, args.Error(0))
}

// HoldCompletions delays every completion until ReleaseCompletions is called.
func (r *MockRadio) HoldCompletions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
}

// ReleaseCompletions delivers the held completions.
func (r *MockRadio) ReleaseCompletions() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gate != nil {
		close(r.gate)
		r.gate = nil
	}
}

// Advertise dispatches adv to discovery subscribers as a backend would.
func (r *MockRadio) Advertise(adv device.Advertisement) {
	r.Discover(device.NewPeripheral(adv))
}

func (r *MockRadio) complete(done func(error), err error) {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()

	go func() {
		if gate != nil {
			<-gate
		}
		done(err)
	}()
}
