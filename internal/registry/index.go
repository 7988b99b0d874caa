package registry

import (
	"strings"

	"github.com/lisdrive/repasse/internal/domain"
)

// Method records which strategy resolved an entry to a driver.
type Method string

const (
	MethodDirect      Method = "direct"
	MethodPlatformKey Method = "platform_key"
	MethodPlate       Method = "plate"
	MethodNone        Method = "none"
)

// Index holds the lookup maps used to attribute a normalized entry to a
// driver. It is a pure function of the driver list at build time: build once
// per processing run and treat as read-only.
type Index struct {
	byID    map[string]*domain.Driver
	byKey   map[domain.Platform]map[string]*domain.Driver
	byPlate map[string]*domain.Driver
}

// Build constructs the index from the full driver list. Integration keys and
// plates are normalized (lower-cased; plates stripped to alphanumerics) so
// that source-side formatting differences do not break resolution.
func Build(drivers []domain.Driver) *Index {
	ix := &Index{
		byID: make(map[string]*domain.Driver, len(drivers)),
		byKey: map[domain.Platform]map[string]*domain.Driver{
			domain.PlatformUber:     make(map[string]*domain.Driver),
			domain.PlatformBolt:     make(map[string]*domain.Driver),
			domain.PlatformFuelCard: make(map[string]*domain.Driver),
		},
		byPlate: make(map[string]*domain.Driver),
	}

	for i := range drivers {
		d := &drivers[i]
		ix.byID[d.ID] = d

		for platform := range ix.byKey {
			if key := d.IntegrationKey(platform); key != "" {
				ix.byKey[platform][key] = d
			}
		}

		if plate := domain.NormalizePlate(d.Vehicle.Plate); plate != "" {
			ix.byPlate[plate] = d
		}
	}

	return ix
}

// resolver is one resolution strategy: it either attributes the entry to a
// driver or passes.
type resolver func(ix *Index, e *domain.NormalizedWeeklyEntry) *domain.Driver

// Strategies are tried in fixed priority order; the first hit wins. The order
// never varies, so an entry resolves to the same driver on every run given
// the same driver state.
var strategies = []struct {
	method Method
	fn     resolver
}{
	{MethodDirect, resolveDirect},
	{MethodPlatformKey, resolvePlatformKey},
	{MethodPlate, resolvePlate},
}

// Resolve attributes an entry to a driver. A miss is not an error: the caller
// counts and logs skipped entries and keeps going.
func (ix *Index) Resolve(e *domain.NormalizedWeeklyEntry) (*domain.Driver, Method) {
	for _, s := range strategies {
		if d := s.fn(ix, e); d != nil {
			return d, s.method
		}
	}
	return nil, MethodNone
}

func resolveDirect(ix *Index, e *domain.NormalizedWeeklyEntry) *domain.Driver {
	if e.DriverID == "" {
		return nil
	}
	return ix.byID[e.DriverID]
}

func resolvePlatformKey(ix *Index, e *domain.NormalizedWeeklyEntry) *domain.Driver {
	if e.ReferenceID == "" {
		return nil
	}
	m, ok := ix.byKey[e.Platform]
	if !ok {
		return nil
	}
	return m[strings.ToLower(e.ReferenceID)]
}

func resolvePlate(ix *Index, e *domain.NormalizedWeeklyEntry) *domain.Driver {
	plate := domain.NormalizePlate(e.VehiclePlate)
	if plate == "" {
		return nil
	}
	return ix.byPlate[plate]
}
