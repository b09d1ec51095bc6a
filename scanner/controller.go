package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/event"
	"github.com/srg/bluuki/internal/radio"
)

const (
	// DefaultStartupStatusDelay postpones the "not ready" status sent at startup
	// so the adapter's own initial notification can arrive first.
	DefaultStartupStatusDelay = 3 * time.Second

	// DefaultInboxSize bounds the number of pending controller inputs
	DefaultInboxSize = 256

	// AdapterStopWarning accompanies a stop forced by an adapter state change
	AdapterStopWarning = "BLE scanning stopped due to change in adapter state."
)

// ErrControllerRunning is returned by Run when the controller is already running
var ErrControllerRunning = errors.New("controller already running")

// Options configures the scan requests issued by the controller.
type Options struct {
	ServiceUUIDs       []string
	AllowDuplicates    bool
	StartupStatusDelay time.Duration
	InboxSize          int
}

// DefaultOptions returns options matching the reference scanner: all services,
// duplicates allowed, 3 s startup status delay.
func DefaultOptions() *Options {
	return &Options{
		AllowDuplicates:    true,
		StartupStatusDelay: DefaultStartupStatusDelay,
		InboxSize:          DefaultInboxSize,
	}
}

// Controller is the scan lifecycle state machine. It is Idle until a start
// completes and Scanning until a stop completes.
//
// Start and stop requests are only issued when the active flag disagrees with
// the wanted state. The flag flips when the radio reports completion, so a
// second request arriving while one is in flight is judged against the old
// value and may be issued again.
type Controller struct {
	radio    radio.Radio
	sink     Sink
	pipeline *Pipeline
	opts     *Options
	logger   *logrus.Logger

	inbox   chan func()
	done    chan struct{}
	running atomic.Bool

	// owned by the Run goroutine
	active       bool
	state        device.AdapterState
	startupTimer *time.Timer
}

// NewController creates a controller for r. A nil pipeline ignores discoveries.
func NewController(r radio.Radio, sink Sink, pipeline *Pipeline, opts *Options, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	size := opts.InboxSize
	if size <= 0 {
		size = DefaultInboxSize
	}

	return &Controller{
		radio:    r,
		sink:     sink,
		pipeline: pipeline,
		opts:     opts,
		logger:   logger,
		inbox:    make(chan func(), size),
		done:     make(chan struct{}),
	}
}

// Run subscribes to the radio and serves controller inputs until ctx is done.
// On return the scan has been asked to stop and all radio subscriptions are
// released; completions arriving later are dropped.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrControllerRunning
	}
	defer close(c.done)

	c.radio.OnDiscover(func(p device.Peripheral) {
		c.post(func() { c.handleDiscover(p) })
	})
	c.radio.OnAdapterStateChange(c.AdapterStateChanged)

	c.state = c.radio.State()
	c.startup()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return nil
		case fn := <-c.inbox:
			fn()
		}
	}
}

// AdapterStateChanged reports a new adapter state.
func (c *Controller) AdapterStateChanged(state device.AdapterState) {
	c.post(func() { c.handleAdapterState(state) })
}

// Command applies an operator command.
func (c *Controller) Command(cmd Command) {
	c.post(func() { c.handleCommand(cmd) })
}

// Input parses a raw operator message and applies it. Malformed messages are
// dropped with IncorrectInputWarning.
func (c *Controller) Input(raw []byte) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		c.logger.WithError(err).Debug("Rejected operator input")
		c.post(func() { c.sink.Warn(IncorrectInputWarning) })
		return
	}
	c.Command(cmd)
}

// Scanning reports the active flag. Answered by the controller loop, so it
// also waits for every input posted before it. Returns false once Run has returned.
func (c *Controller) Scanning() bool {
	var active bool
	if !c.call(func() { active = c.active }) {
		return false
	}
	return active
}

// AdapterState reports the last adapter state seen by the controller loop.
func (c *Controller) AdapterState() device.AdapterState {
	var state device.AdapterState
	if !c.call(func() { state = c.state }) {
		return device.StateUnknown
	}
	return state
}

// post queues fn for the loop. Returns false if the controller has stopped.
func (c *Controller) post(fn func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.inbox <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) call(fn func()) bool {
	reply := make(chan struct{})
	if !c.post(func() { fn(); close(reply) }) {
		return false
	}
	select {
	case <-reply:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) startup() {
	if c.state.IsReady() {
		c.startScan(false, false)
		return
	}

	state := c.state
	c.sink.Warn(fmt.Sprintf("Unable to start BLE scan. Adapter state: %s", state))

	// TODO: replace the delay with a one-shot subscription once radio.Radio reports readiness.
	c.startupTimer = time.AfterFunc(c.opts.StartupStatusDelay, func() {
		c.post(func() {
			c.emitStatus(&event.Status{Error: true, StateChange: false, State: state})
		})
	})
}

func (c *Controller) shutdown() {
	if c.startupTimer != nil {
		c.startupTimer.Stop()
	}
	c.stopScan(false, false)
	c.radio.RemoveAllSubscriptions()
	c.logger.Debug("Scan controller stopped")
}

func (c *Controller) handleAdapterState(state device.AdapterState) {
	c.logger.WithFields(logrus.Fields{
		"state":  state,
		"active": c.active,
	}).Debug("Adapter state changed")

	c.state = state
	if state.IsReady() {
		c.startScan(true, false)
		return
	}
	c.stopScan(true, true)
}

func (c *Controller) handleCommand(cmd Command) {
	c.logger.WithField("scan", cmd.Scan).Debug("Operator command")
	if cmd.Scan {
		c.startScan(false, false)
		return
	}
	c.stopScan(false, false)
}

func (c *Controller) handleDiscover(p device.Peripheral) {
	if c.pipeline != nil {
		c.pipeline.Handle(p)
	}
}

func (c *Controller) startScan(stateChange, isError bool) {
	if c.active {
		return
	}
	c.emitStatus(&event.Status{Error: isError, StateChange: stateChange, State: c.state})

	c.radio.StartScanning(c.opts.ServiceUUIDs, c.opts.AllowDuplicates, func(err error) {
		c.post(func() { c.startCompleted(err) })
	})
}

func (c *Controller) stopScan(stateChange, isError bool) {
	if !c.active {
		return
	}
	c.emitStatus(&event.Status{Error: isError, StateChange: stateChange, State: c.state})

	c.radio.StopScanning(func(err error) {
		c.post(func() { c.stopCompleted(err) })
	})

	if isError {
		c.sink.Warn(AdapterStopWarning)
	}
}

func (c *Controller) startCompleted(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		c.logger.Debug("Scan start interrupted by stop")
		return
	case errors.Is(err, device.ErrAlreadyScanning):
		// a second start raced the first; the radio is scanning either way
		c.logger.Debug("Scan already running")
	case err != nil:
		c.scanFailed("start", err)
		return
	}

	if c.active {
		return
	}
	c.active = true
	c.logger.WithFields(logrus.Fields{
		"services":         c.opts.ServiceUUIDs,
		"allow_duplicates": c.opts.AllowDuplicates,
	}).Info("Scanning for BLEs started")
	c.sink.ScanState(true)
}

func (c *Controller) stopCompleted(err error) {
	if err != nil {
		c.scanFailed("stop", err)
		return
	}
	if !c.active {
		return
	}
	c.active = false
	c.logger.Info("BLE scanning stopped")
	c.sink.ScanState(false)
}

func (c *Controller) scanFailed(op string, err error) {
	opErr := &device.ScanOperationError{Op: op, Err: err}
	c.logger.WithError(err).WithFields(logrus.Fields{
		"op":     op,
		"active": c.active,
	}).Error("Scan operation failed")

	c.emitStatus(&event.Status{Error: true, StateChange: false, State: c.state, Reason: opErr.Error()})
	c.sink.Warn(opErr.Error())
}

func (c *Controller) emitStatus(s *event.Status) {
	c.logger.WithFields(logrus.Fields{
		"error":        s.Error,
		"state_change": s.StateChange,
		"state":        s.State,
	}).Debug("Status update")
	c.sink.Emit(s)
}
