package goble

import (
	"github.com/go-ble/ble"
	"github.com/srg/bluuki/internal/device"
)

// bleAdvertisement is the part of ble.Advertisement the scanner reads
type bleAdvertisement interface {
	LocalName() string
	ManufacturerData() []byte
	ServiceData() []ble.ServiceData
	Services() []ble.UUID
	TxPowerLevel() int
	RSSI() int
	Addr() ble.Addr
}

// BLEAdvertisement wraps a go-ble advertisement to implement device.Advertisement
type BLEAdvertisement struct {
	adv bleAdvertisement
}

// NewBLEAdvertisement creates a new BLEAdvertisement wrapper
func NewBLEAdvertisement(adv ble.Advertisement) device.Advertisement {
	return &BLEAdvertisement{adv: adv}
}

func (a *BLEAdvertisement) LocalName() string        { return a.adv.LocalName() }
func (a *BLEAdvertisement) ManufacturerData() []byte { return a.adv.ManufacturerData() }
func (a *BLEAdvertisement) TxPowerLevel() int        { return a.adv.TxPowerLevel() }
func (a *BLEAdvertisement) RSSI() int                { return a.adv.RSSI() }

func (a *BLEAdvertisement) Addr() string {
	addr := a.adv.Addr()
	if addr == nil {
		return ""
	}
	return addr.String()
}

func (a *BLEAdvertisement) ServiceData() []device.ServiceData {
	raw := a.adv.ServiceData()
	if len(raw) == 0 {
		return nil
	}
	result := make([]device.ServiceData, len(raw))
	for i, sd := range raw {
		result[i] = device.ServiceData{UUID: sd.UUID.String(), Data: sd.Data}
	}
	return result
}

func (a *BLEAdvertisement) Services() []string {
	raw := a.adv.Services()
	if len(raw) == 0 {
		return nil
	}
	result := make([]string, len(raw))
	for i, svc := range raw {
		result[i] = svc.String()
	}
	return result
}
