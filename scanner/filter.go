package scanner

import (
	"sort"

	"github.com/cornelk/hashmap"
	"github.com/srg/bluuki/internal/device"
)

// DefaultTarget is the peripheral watched when no targets are configured.
const DefaultTarget = "2471894daeb6"

// Filter accepts peripherals whose ID matches one of the configured targets.
type Filter struct {
	targets *hashmap.Map[string, struct{}]
}

// NewFilter builds a filter over targets. Targets may be written as MAC
// addresses or bare hex; empty entries are skipped.
func NewFilter(targets ...string) *Filter {
	f := &Filter{targets: hashmap.New[string, struct{}]()}
	for _, t := range targets {
		if id := device.NormalizePeripheralID(t); id != "" {
			f.targets.Set(id, struct{}{})
		}
	}
	return f
}

// Accept reports whether p is a target.
func (f *Filter) Accept(p device.Peripheral) bool {
	_, ok := f.targets.Get(device.NormalizePeripheralID(p.ID))
	return ok
}

// Targets returns the normalized targets in sorted order.
func (f *Filter) Targets() []string {
	out := make([]string, 0, f.targets.Len())
	f.targets.Range(func(id string, _ struct{}) bool {
		out = append(out, id)
		return true
	})
	sort.Strings(out)
	return out
}
