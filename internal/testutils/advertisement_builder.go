package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/srg/bluuki/internal/device"
)

// Advertisement is an in-memory device.Advertisement.
type Advertisement struct {
	Name        string
	Address     string
	Rssi        int
	ServiceList []string
	Manufacture []byte
	Service     []device.ServiceData
	TxPower     int
}

func (a *Advertisement) LocalName() string                 { return a.Name }
func (a *Advertisement) ManufacturerData() []byte          { return a.Manufacture }
func (a *Advertisement) ServiceData() []device.ServiceData { return a.Service }
func (a *Advertisement) Services() []string                { return a.ServiceList }
func (a *Advertisement) TxPowerLevel() int                 { return a.TxPower }
func (a *Advertisement) RSSI() int                         { return a.Rssi }
func (a *Advertisement) Addr() string                      { return a.Address }

// AdvertisementBuilder builds advertisements for testing with a fluent API.
// Unset fields keep the defaults of NewAdvertisementBuilder.
type AdvertisementBuilder struct {
	adv Advertisement
}

// NewAdvertisementBuilder creates a builder for the default target peripheral
// with rssi -70 and no TX power level.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{
		adv: Advertisement{
			Address: "24:71:89:4d:ae:b6",
			Rssi:    -70,
			TxPower: device.TxPowerUnknown,
		},
	}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.Name = name
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.Address = addr
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.Rssi = rssi
	return b
}

// WithServices adds service UUIDs to the advertisement.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.adv.ServiceList = append(b.adv.ServiceList, uuids...)
	return b
}

// WithManufacturerData sets the manufacturer-specific data.
func (b *AdvertisementBuilder) WithManufacturerData(data []byte) *AdvertisementBuilder {
	b.adv.Manufacture = data
	return b
}

// WithServiceData adds service-specific data for the given service UUID.
func (b *AdvertisementBuilder) WithServiceData(uuid string, data []byte) *AdvertisementBuilder {
	b.adv.Service = append(b.adv.Service, device.ServiceData{UUID: uuid, Data: data})
	return b
}

// WithTxPower sets the transmission power level.
func (b *AdvertisementBuilder) WithTxPower(power int) *AdvertisementBuilder {
	b.adv.TxPower = power
	return b
}

// FromJSON fills builder fields from a JSON string with format support.
// Byte fields are base64 as encoding/json expects. Panics on invalid JSON
// as this is intended for test data setup.
func (b *AdvertisementBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	jsonStr := fmt.Sprintf(jsonStrFmt, args...)

	var data struct {
		Name             *string              `json:"name"`
		Address          *string              `json:"address"`
		RSSI             *int                 `json:"rssi"`
		Services         []string             `json:"services"`
		ManufacturerData []byte               `json:"manufacturerData"`
		ServiceData      []device.ServiceData `json:"serviceData"`
		TxPower          *int                 `json:"txPower"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		panic(fmt.Sprintf("FromJSON: %v", err))
	}

	if data.Name != nil {
		b.adv.Name = *data.Name
	}
	if data.Address != nil {
		b.adv.Address = *data.Address
	}
	if data.RSSI != nil {
		b.adv.Rssi = *data.RSSI
	}
	if data.Services != nil {
		b.adv.ServiceList = data.Services
	}
	if data.ManufacturerData != nil {
		b.adv.Manufacture = data.ManufacturerData
	}
	if data.ServiceData != nil {
		b.adv.Service = data.ServiceData
	}
	if data.TxPower != nil {
		b.adv.TxPower = *data.TxPower
	}
	return b
}

// Build returns a copy of the configured advertisement.
func (b *AdvertisementBuilder) Build() *Advertisement {
	adv := b.adv
	return &adv
}

// BuildPeripheral converts the advertisement the way a radio backend would.
func (b *AdvertisementBuilder) BuildPeripheral() device.Peripheral {
	return device.NewPeripheral(b.Build())
}
