package settlement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
)

func testSettlement(driverID, weekID string, repasse float64) *domain.WeeklySettlement {
	// Stored timestamps carry second precision.
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.WeeklySettlement{
		ID:        domain.SettlementKey(driverID, weekID),
		DriverID:  driverID,
		WeekID:    weekID,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Repasse:   repasse,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestGate(t *testing.T) (*Gate, *repository.SettlementRepo) {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSettlementRepo(db)
	return NewGate(repo), repo
}

func TestGateCreatesOnFirstCall(t *testing.T) {
	gate, _ := newTestGate(t)

	calls := 0
	s, computed, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		calls++
		return testSettlement("drv1", testWeek, 100), nil
	})
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.PaymentPending, s.PaymentStatus)
}

func TestGateSkipsComputeWhenRecordExists(t *testing.T) {
	gate, _ := newTestGate(t)

	_, _, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		return testSettlement("drv1", testWeek, 100), nil
	})
	require.NoError(t, err)

	calls := 0
	s, computed, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		calls++
		return testSettlement("drv1", testWeek, 999), nil
	})
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 100.0, s.Repasse)
}

func TestGateForceRefreshPreservesPaymentFields(t *testing.T) {
	gate, repo := newTestGate(t)

	first, _, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		return testSettlement("drv1", testWeek, 100), nil
	})
	require.NoError(t, err)

	s, computed, err := gate.GetOrCreate("drv1", testWeek, true, func() (*domain.WeeklySettlement, error) {
		return testSettlement("drv1", testWeek, 150), nil
	})
	require.NoError(t, err)
	assert.True(t, computed)
	assert.Equal(t, 150.0, s.Repasse)
	assert.Equal(t, domain.PaymentPending, s.PaymentStatus)
	assert.Equal(t, first.CreatedAt, s.CreatedAt)

	stored, err := repo.GetByKey("drv1", testWeek)
	require.NoError(t, err)
	assert.Equal(t, 150.0, stored.Repasse)
}

func TestGateRefusesRefreshOfPaidRecord(t *testing.T) {
	gate, repo := newTestGate(t)

	first, _, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		return testSettlement("drv1", testWeek, 100), nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaid(first.ID, "ref-1"))

	calls := 0
	s, computed, err := gate.GetOrCreate("drv1", testWeek, true, func() (*domain.WeeklySettlement, error) {
		calls++
		return testSettlement("drv1", testWeek, 999), nil
	})
	require.NoError(t, err)
	assert.False(t, computed)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 100.0, s.Repasse)
	assert.Equal(t, domain.PaymentPaid, s.PaymentStatus)
}

func TestGateComputeErrorPropagates(t *testing.T) {
	gate, repo := newTestGate(t)

	wantErr := errors.New("malformed financing data")
	_, _, err := gate.GetOrCreate("drv1", testWeek, false, func() (*domain.WeeklySettlement, error) {
		return nil, wantErr
	})
	assert.True(t, errors.Is(err, wantErr))

	_, err = repo.GetByKey("drv1", testWeek)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
