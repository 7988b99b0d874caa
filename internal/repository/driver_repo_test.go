package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisdrive/repasse/internal/domain"
)

func newTestDB(t *testing.T) *DriverRepo {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return NewDriverRepo(db)
}

func TestDriverRoundTrip(t *testing.T) {
	repo := newTestDB(t)

	in := domain.Driver{
		ID:        "drv1",
		Name:      "Ana",
		Type:      domain.DriverRenter,
		Status:    domain.DriverActive,
		RentalFee: 50,
		Integrations: map[domain.Platform]domain.Integration{
			domain.PlatformUber: {Key: "uber-uuid", Enabled: true},
		},
		Vehicle:    domain.Vehicle{Plate: "AA-11-AA"},
		AdminFee:   &domain.AdminFeeOverride{Mode: domain.AdminFeeFixed, Value: 30},
		Commission: 5,
		Banking:    domain.Banking{IBAN: "PT50000201231234567890154"},
	}
	require.NoError(t, repo.Insert(&in))

	out, err := repo.GetByID("drv1")
	require.NoError(t, err)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, "uber-uuid", out.Integrations[domain.PlatformUber].Key)
	require.NotNil(t, out.AdminFee)
	assert.Equal(t, domain.AdminFeeFixed, out.AdminFee.Mode)
	assert.Equal(t, 30.0, out.AdminFee.Value)
	assert.Equal(t, in.Banking.IBAN, out.Banking.IBAN)
}

func TestDriverWithoutFeeOverride(t *testing.T) {
	repo := newTestDB(t)

	require.NoError(t, repo.Insert(&domain.Driver{
		ID: "drv2", Name: "Rui", Type: domain.DriverAffiliate, Status: domain.DriverActive,
	}))

	out, err := repo.GetByID("drv2")
	require.NoError(t, err)
	assert.Nil(t, out.AdminFee)
}

func TestDriverNotFound(t *testing.T) {
	repo := newTestDB(t)

	_, err := repo.GetByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
