package device

// Peripheral is the record built from one discovery event. It is owned by the
// handling pass that produced it and is not retained.
type Peripheral struct {
	ID               string
	UUID             string
	Address          string
	LocalName        string
	RSSI             int
	ManufacturerData []byte
	ServiceData      []ServiceData
	Services         []string
	TxPowerLevel     int
}

// NewPeripheral copies an advertisement into a Peripheral. Service UUIDs are normalized.
func NewPeripheral(adv Advertisement) Peripheral {
	id := NormalizePeripheralID(adv.Addr())

	var manufData []byte
	if md := adv.ManufacturerData(); len(md) > 0 {
		manufData = append([]byte(nil), md...)
	}

	var serviceData []ServiceData
	for _, sd := range adv.ServiceData() {
		serviceData = append(serviceData, ServiceData{
			UUID: NormalizeUUID(sd.UUID),
			Data: append([]byte(nil), sd.Data...),
		})
	}

	return Peripheral{
		ID:               id,
		UUID:             id,
		Address:          adv.Addr(),
		LocalName:        adv.LocalName(),
		RSSI:             adv.RSSI(),
		ManufacturerData: manufData,
		ServiceData:      serviceData,
		Services:         NormalizeUUIDs(adv.Services()),
		TxPowerLevel:     adv.TxPowerLevel(),
	}
}

// HasService reports whether the peripheral advertises the given service UUID.
func (p Peripheral) HasService(uuid string) bool {
	want := NormalizeUUID(uuid)
	for _, s := range p.Services {
		if s == want {
			return true
		}
	}
	return false
}

// ServiceDataFor returns the service data advertised for uuid, if any.
func (p Peripheral) ServiceDataFor(uuid string) ([]byte, bool) {
	want := NormalizeUUID(uuid)
	for _, sd := range p.ServiceData {
		if sd.UUID == want {
			return sd.Data, true
		}
	}
	return nil, false
}
