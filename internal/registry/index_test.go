package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisdrive/repasse/internal/domain"
)

func testDrivers() []domain.Driver {
	return []domain.Driver{
		{
			ID:     "drv-ana",
			Name:   "Ana",
			Status: domain.DriverActive,
			Integrations: map[domain.Platform]domain.Integration{
				domain.PlatformUber: {Key: "UBER-UUID-ANA", Enabled: true},
				domain.PlatformBolt: {Key: "ana@bolt.pt", Enabled: true},
			},
			Vehicle: domain.Vehicle{Plate: "AA-11-AA"},
		},
		{
			ID:     "drv-rui",
			Name:   "Rui",
			Status: domain.DriverActive,
			Integrations: map[domain.Platform]domain.Integration{
				domain.PlatformUber:     {Key: "uber-uuid-rui", Enabled: true},
				domain.PlatformFuelCard: {Key: "CARD-42", Enabled: true},
			},
			Vehicle: domain.Vehicle{Plate: "BB-22-BB"},
		},
		{
			ID:     "drv-off",
			Name:   "Desligado",
			Status: domain.DriverInactive,
			Integrations: map[domain.Platform]domain.Integration{
				domain.PlatformBolt: {Key: "off@bolt.pt", Enabled: false},
			},
		},
	}
}

func TestResolveDirect(t *testing.T) {
	ix := Build(testDrivers())

	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{DriverID: "drv-ana"})
	require.NotNil(t, d)
	assert.Equal(t, "drv-ana", d.ID)
	assert.Equal(t, MethodDirect, method)
}

func TestResolveDirectWinsOverPlatformKey(t *testing.T) {
	ix := Build(testDrivers())

	// Entry carries a valid driver id AND a reference key belonging to a
	// different driver; the direct match must win.
	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		DriverID:    "drv-ana",
		ReferenceID: "uber-uuid-rui",
		Platform:    domain.PlatformUber,
	})
	require.NotNil(t, d)
	assert.Equal(t, "drv-ana", d.ID)
	assert.Equal(t, MethodDirect, method)
}

func TestResolvePlatformKeyCaseInsensitive(t *testing.T) {
	ix := Build(testDrivers())

	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		ReferenceID: "uber-uuid-ana",
		Platform:    domain.PlatformUber,
	})
	require.NotNil(t, d)
	assert.Equal(t, "drv-ana", d.ID)
	assert.Equal(t, MethodPlatformKey, method)

	d, _ = ix.Resolve(&domain.NormalizedWeeklyEntry{
		ReferenceID: "ANA@BOLT.PT",
		Platform:    domain.PlatformBolt,
	})
	require.NotNil(t, d)
	assert.Equal(t, "drv-ana", d.ID)
}

func TestResolveFuelCardKey(t *testing.T) {
	ix := Build(testDrivers())

	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		ReferenceID: "card-42",
		Platform:    domain.PlatformFuelCard,
	})
	require.NotNil(t, d)
	assert.Equal(t, "drv-rui", d.ID)
	assert.Equal(t, MethodPlatformKey, method)
}

func TestResolvePlateNormalized(t *testing.T) {
	ix := Build(testDrivers())

	// Unknown driver id falls through; plate formatting differences do not
	// break the lookup.
	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		DriverID:     "drv-unknown",
		VehiclePlate: "bb22bb",
		Platform:     domain.PlatformTollCard,
	})
	require.NotNil(t, d)
	assert.Equal(t, "drv-rui", d.ID)
	assert.Equal(t, MethodPlate, method)
}

func TestResolveDisabledIntegrationIgnored(t *testing.T) {
	ix := Build(testDrivers())

	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		ReferenceID: "off@bolt.pt",
		Platform:    domain.PlatformBolt,
	})
	assert.Nil(t, d)
	assert.Equal(t, MethodNone, method)
}

func TestResolveMissIsNotAnError(t *testing.T) {
	ix := Build(testDrivers())

	d, method := ix.Resolve(&domain.NormalizedWeeklyEntry{
		ReferenceID: "nobody",
		Platform:    domain.PlatformUber,
	})
	assert.Nil(t, d)
	assert.Equal(t, MethodNone, method)
}

func TestResolveIsDeterministic(t *testing.T) {
	drivers := testDrivers()
	entry := domain.NormalizedWeeklyEntry{
		ReferenceID:  "uber-uuid-ana",
		VehiclePlate: "BB-22-BB",
		Platform:     domain.PlatformUber,
	}

	for i := 0; i < 5; i++ {
		ix := Build(drivers)
		d, method := ix.Resolve(&entry)
		require.NotNil(t, d)
		assert.Equal(t, "drv-ana", d.ID)
		assert.Equal(t, MethodPlatformKey, method)
	}
}
