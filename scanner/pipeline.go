package scanner

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/beacon"
	"github.com/srg/bluuki/internal/device"
	"github.com/srg/bluuki/internal/event"
)

// Pipeline handles one discovered peripheral: filter, decode, assemble, emit.
type Pipeline struct {
	filter      *Filter
	decoder     beacon.Decoder
	assembler   *Assembler
	sink        Sink
	magneticTag string
	logger      *logrus.Logger
}

// NewPipeline wires the discovery path. A nil decoder uses beacon.Default and
// an empty magneticTag uses beacon.MagneticServiceTag.
func NewPipeline(filter *Filter, decoder beacon.Decoder, assembler *Assembler, sink Sink, magneticTag string, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	if decoder == nil {
		decoder = beacon.Default
	}
	if magneticTag == "" {
		magneticTag = beacon.MagneticServiceTag
	}
	return &Pipeline{
		filter:      filter,
		decoder:     decoder,
		assembler:   assembler,
		sink:        sink,
		magneticTag: device.NormalizeUUID(magneticTag),
		logger:      logger,
	}
}

// Handle processes p and returns the emitted measurement, or nil when p is not a target.
func (pl *Pipeline) Handle(p device.Peripheral) *event.Measurement {
	if !pl.filter.Accept(p) {
		pl.logger.WithField("peripheral", p.ID).Trace("Ignoring peripheral")
		return nil
	}

	ib, _ := pl.decoder.DecodeIBeacon(p.ManufacturerData, float64(p.RSSI))

	var mag *beacon.MagneticField
	if p.HasService(pl.magneticTag) {
		data, ok := p.ServiceDataFor(pl.magneticTag)
		if !ok {
			data = p.ManufacturerData
		}
		mag, _ = pl.decoder.DecodeMagneticField(data)
	}

	m := pl.assembler.Assemble(p, ib, mag)

	fields := logrus.Fields{
		"peripheral": p.ID,
		"rssi":       p.RSSI,
		"ibeacon":    ib != nil,
		"magnetic":   mag != nil,
	}
	if ib != nil {
		fields["proximity"] = ib.Proximity
		fields["accuracy"] = ib.Accuracy
	}
	pl.logger.WithFields(fields).Debug("Measurement")

	pl.sink.Emit(m)
	return m
}
