package goble

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/testutils"
	"github.com/srg/bluuki/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const waitTimeout = 2 * time.Second

// fakeAdvertisement implements bleAdvertisement with fixed values
type fakeAdvertisement struct {
	name     string
	manuf    []byte
	svcData  []ble.ServiceData
	services []ble.UUID
	txPower  int
	rssi     int
	addr     ble.Addr
}

func (f *fakeAdvertisement) LocalName() string              { return f.name }
func (f *fakeAdvertisement) ManufacturerData() []byte       { return f.manuf }
func (f *fakeAdvertisement) ServiceData() []ble.ServiceData { return f.svcData }
func (f *fakeAdvertisement) Services() []ble.UUID           { return f.services }
func (f *fakeAdvertisement) TxPowerLevel() int              { return f.txPower }
func (f *fakeAdvertisement) RSSI() int                      { return f.rssi }
func (f *fakeAdvertisement) Addr() ble.Addr                 { return f.addr }

func TestBLEAdvertisement_Conversion(t *testing.T) {
	raw := &fakeAdvertisement{
		name:     "sensor",
		manuf:    []byte{0x4c, 0x00, 0x02, 0x15},
		svcData:  []ble.ServiceData{{UUID: ble.UUID16(0xb000), Data: []byte{0x01, 0x02}}},
		services: []ble.UUID{ble.UUID16(0xb000), ble.UUID16(0x180f)},
		txPower:  device.TxPowerUnknown,
		rssi:     -64,
		addr:     ble.NewAddr("24:71:89:4D:AE:B6"),
	}

	p := device.NewPeripheral(&BLEAdvertisement{adv: raw})

	assert.Equal(t, "2471894daeb6", p.ID)
	assert.Equal(t, "sensor", p.LocalName)
	assert.Equal(t, -64, p.RSSI)
	assert.Equal(t, device.TxPowerUnknown, p.TxPowerLevel)
	assert.Equal(t, []byte{0x4c, 0x00, 0x02, 0x15}, p.ManufacturerData)
	assert.True(t, p.HasService("b000"), "16-bit services MUST be matched in short form")
	assert.True(t, p.HasService("0000180f-0000-1000-8000-00805f9b34fb"))

	data, ok := p.ServiceDataFor("b000")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}

func TestBLEAdvertisement_EmptyFields(t *testing.T) {
	adv := &BLEAdvertisement{adv: &fakeAdvertisement{txPower: device.TxPowerUnknown}}

	assert.Empty(t, adv.Addr(), "a missing address MUST convert to an empty string")
	assert.Nil(t, adv.Services())
	assert.Nil(t, adv.ServiceData())
}

// fakeDevice is a ScanningDevice fed from a channel
type fakeDevice struct {
	adverts chan device.Advertisement
	scanErr chan error

	mu       sync.Mutex
	allowDup []bool
	stopped  bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		adverts: make(chan device.Advertisement),
		scanErr: make(chan error, 1),
	}
}

func (d *fakeDevice) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	d.mu.Lock()
	d.allowDup = append(d.allowDup, allowDup)
	d.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-d.scanErr:
			return err
		case adv := <-d.adverts:
			handler(adv)
		}
	}
}

func (d *fakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

type RadioTestSuite struct {
	suite.Suite

	dev             *fakeDevice
	originalFactory func() (ScanningDevice, error)
	radio           *Radio
	discovered      chan device.Peripheral
	states          chan device.AdapterState
}

func (s *RadioTestSuite) SetupTest() {
	s.dev = newFakeDevice()
	s.originalFactory = DeviceFactory
	DeviceFactory = func() (ScanningDevice, error) { return s.dev, nil }

	s.discovered = make(chan device.Peripheral, 8)
	s.states = make(chan device.AdapterState, 8)

	s.radio = New(nil, 10*time.Millisecond, testutils.NewTestHelper(s.T()).Logger)
	s.radio.OnDiscover(func(p device.Peripheral) { s.discovered <- p })
	s.radio.OnAdapterStateChange(func(st device.AdapterState) { s.states <- st })
}

func (s *RadioTestSuite) TearDownTest() {
	DeviceFactory = s.originalFactory
}

func (s *RadioTestSuite) await(ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-time.After(waitTimeout):
		s.FailNow("completion was not delivered")
		return nil
	}
}

func (s *RadioTestSuite) start(services ...string) {
	done := make(chan error, 1)
	s.radio.StartScanning(services, true, func(err error) { done <- err })
	s.Require().NoError(s.await(done), "start MUST complete once the scan settles")
}

func (s *RadioTestSuite) stop() {
	done := make(chan error, 1)
	s.radio.StopScanning(func(err error) { done <- err })
	s.Require().NoError(s.await(done))
}

func (s *RadioTestSuite) TestOpenAssumesPoweredOnWithoutMonitor() {
	s.Require().NoError(s.radio.Open(context.Background()))
	s.Equal(device.StatePoweredOn, s.radio.State())
}

func (s *RadioTestSuite) TestOpenFailureRecordsState() {
	// GOAL: a device that cannot be opened leaves the radio in the state the error implies
	//
	// TEST SCENARIO: factory reports bluetooth off → state poweredOff, start fails with ErrUnsupported

	DeviceFactory = func() (ScanningDevice, error) {
		return nil, device.NormalizeError(errors.New("is Bluetooth turned on?"))
	}

	s.Require().NoError(s.radio.Open(context.Background()))
	s.Equal(device.StatePoweredOff, s.radio.State())

	done := make(chan error, 1)
	s.radio.StartScanning(nil, true, func(err error) { done <- err })
	s.ErrorIs(s.await(done), device.ErrUnsupported)
}

func (s *RadioTestSuite) TestScanDispatchesAdvertisements() {
	s.Require().NoError(s.radio.Open(context.Background()))
	s.start()

	adv := testutils.NewAdvertisementBuilder().WithName("beacon").Build()
	s.dev.adverts <- adv

	select {
	case p := <-s.discovered:
		s.Equal("2471894daeb6", p.ID)
		s.Equal("beacon", p.LocalName)
	case <-time.After(waitTimeout):
		s.FailNow("advertisement was not dispatched")
	}

	s.stop()
	s.dev.mu.Lock()
	s.Equal([]bool{true}, s.dev.allowDup)
	s.dev.mu.Unlock()
}

func (s *RadioTestSuite) TestScanAppliesServiceFilter() {
	// GOAL: only peripherals advertising a requested service are dispatched
	//
	// TEST SCENARIO: filter on b000 → non-matching advertisement dropped, matching one delivered

	s.Require().NoError(s.radio.Open(context.Background()))
	s.start("0xB000")

	s.dev.adverts <- testutils.NewAdvertisementBuilder().WithName("other").WithServices("180f").Build()
	s.dev.adverts <- testutils.NewAdvertisementBuilder().WithName("magnet").WithServices("b000").Build()

	select {
	case p := <-s.discovered:
		s.Equal("magnet", p.LocalName, "non-matching peripherals MUST be dropped")
	case <-time.After(waitTimeout):
		s.FailNow("matching advertisement was not dispatched")
	}
	s.stop()
}

func (s *RadioTestSuite) TestScanFailureAfterStartChangesState() {
	// GOAL: a scan that dies after start is visible to subscribers as a state change
	//
	// TEST SCENARIO: scan returns "permission denied" after settling → state unauthorized

	s.Require().NoError(s.radio.Open(context.Background()))
	<-s.states // poweredOn from Open
	s.start()

	s.dev.scanErr <- errors.New("permission denied")

	select {
	case st := <-s.states:
		s.Equal(device.StateUnauthorized, st)
	case <-time.After(waitTimeout):
		s.FailNow("scan failure was not reported")
	}
}

func (s *RadioTestSuite) TestRepeatedScanFailureIsReportedEachTime() {
	// GOAL: a scan dying twice with the same error is reported twice
	//
	// TEST SCENARIO: start → "permission denied" → restart → "permission denied" → two unauthorized reports

	s.Require().NoError(s.radio.Open(context.Background()))
	<-s.states // poweredOn from Open

	for i := 0; i < 2; i++ {
		s.start()
		s.dev.scanErr <- errors.New("permission denied")

		select {
		case st := <-s.states:
			s.Equal(device.StateUnauthorized, st, "failure %d MUST be reported", i+1)
		case <-time.After(waitTimeout):
			s.FailNow("scan failure was not reported", "failure %d", i+1)
		}
		s.Eventually(func() bool { return !s.radio.runner.Running() }, waitTimeout, time.Millisecond)
	}
}

func (s *RadioTestSuite) TestControllerTracksRepeatedScanFailures() {
	// GOAL: the controller's scanning flag follows the radio through repeated scan deaths
	//
	// TEST SCENARIO: controller starts scanning → scan dies → operator restarts → scan dies again
	//                → controller reports not scanning and a new start is issued on request

	s.Require().NoError(s.radio.Open(context.Background()))

	sink := &testutils.RecordingSink{}
	opts := scanner.DefaultOptions()
	ctrl := scanner.NewController(s.radio, sink, nil, opts, testutils.NewTestHelper(s.T()).Logger)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- ctrl.Run(ctx) }()
	defer func() {
		cancel()
		<-runDone
	}()

	scanning := func(want bool) {
		s.Require().Eventually(func() bool { return ctrl.Scanning() == want },
			waitTimeout, time.Millisecond, "controller scanning MUST become %t", want)
	}

	scanning(true)
	s.dev.scanErr <- errors.New("permission denied")
	scanning(false)

	ctrl.Command(scanner.Command{Scan: true})
	scanning(true)
	s.dev.scanErr <- errors.New("permission denied")
	scanning(false)
	s.False(s.radio.runner.Running(), "runner MUST be idle after the second failure")

	ctrl.Command(scanner.Command{Scan: true})
	scanning(true)
	s.True(s.radio.runner.Running(), "a restart after repeated failures MUST reach the radio")
}

func (s *RadioTestSuite) TestCloseStopsDevice() {
	s.Require().NoError(s.radio.Open(context.Background()))
	s.start()

	s.Require().NoError(s.radio.Close())

	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	s.True(s.dev.stopped, "Close MUST release the device")
}

func TestRadioTestSuite(t *testing.T) {
	suite.Run(t, new(RadioTestSuite))
}
