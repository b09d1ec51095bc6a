package tinygo

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/srg/bluuki/internal/device"
	"tinygo.org/x/bluetooth"
)

// watchedUUID pairs a normalized UUID with its tinygo form. tinygo payloads
// can only be asked whether they list a given service, so the services a
// peripheral reports are those of the watched set it matches plus those it
// carries service data for.
type watchedUUID struct {
	name string
	uuid bluetooth.UUID
}

// parseUUID converts a 16, 32 or 128-bit UUID string to a bluetooth.UUID
func parseUUID(s string) (bluetooth.UUID, error) {
	n := device.NormalizeUUID(s)
	switch len(n) {
	case 4:
		v, err := strconv.ParseUint(n, 16, 16)
		if err != nil {
			return bluetooth.UUID{}, fmt.Errorf("invalid UUID %q: %w", s, err)
		}
		return bluetooth.New16BitUUID(uint16(v)), nil
	case 8:
		n = n + "00001000800000805f9b34fb"
	case 32:
	default:
		return bluetooth.UUID{}, fmt.Errorf("invalid UUID length: %q", s)
	}
	return bluetooth.ParseUUID(n[0:8] + "-" + n[8:12] + "-" + n[12:16] + "-" + n[16:20] + "-" + n[20:32])
}

// advertisement adapts a tinygo scan result to device.Advertisement
type advertisement struct {
	addr     string
	rssi     int
	name     string
	manuf    []byte
	svcData  []device.ServiceData
	services []string
}

func newAdvertisement(r Result, watched []watchedUUID) *advertisement {
	adv := &advertisement{addr: r.Address, rssi: int(r.RSSI)}
	if r.Payload == nil {
		return adv
	}
	adv.name = r.Payload.LocalName()

	// noble reports manufacturer data with the company identifier in front
	for _, el := range r.Payload.ManufacturerData() {
		adv.manuf = binary.LittleEndian.AppendUint16(adv.manuf, el.CompanyID)
		adv.manuf = append(adv.manuf, el.Data...)
	}

	listed := map[string]bool{}
	for _, w := range watched {
		if r.Payload.HasServiceUUID(w.uuid) {
			adv.services = append(adv.services, w.name)
			listed[w.name] = true
		}
	}

	for _, el := range r.Payload.ServiceData() {
		name := device.NormalizeUUID(el.UUID.String())
		adv.svcData = append(adv.svcData, device.ServiceData{
			UUID: name,
			Data: append([]byte(nil), el.Data...),
		})
		if !listed[name] {
			adv.services = append(adv.services, name)
			listed[name] = true
		}
	}
	return adv
}

func (a *advertisement) LocalName() string                 { return a.name }
func (a *advertisement) ManufacturerData() []byte          { return a.manuf }
func (a *advertisement) ServiceData() []device.ServiceData { return a.svcData }
func (a *advertisement) Services() []string                { return a.services }
func (a *advertisement) TxPowerLevel() int                 { return device.TxPowerUnknown }
func (a *advertisement) RSSI() int                         { return a.rssi }
func (a *advertisement) Addr() string                      { return a.addr }

// joinWatched returns the de-duplicated union of the given UUID lists in tinygo form.
func joinWatched(lists ...[]string) ([]watchedUUID, []error) {
	seen := map[string]bool{}
	var (
		out  []watchedUUID
		errs []error
	)
	for _, list := range lists {
		for _, s := range list {
			name := device.NormalizeUUID(s)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			u, err := parseUUID(name)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, watchedUUID{name: name, uuid: u})
		}
	}
	return out, errs
}
