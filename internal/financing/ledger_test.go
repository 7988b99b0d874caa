package financing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
)

func newTestLedger(t *testing.T) (*Ledger, *repository.FinancingRepo) {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewFinancingRepo(db)
	return NewLedger(repo), repo
}

func TestWeeklySummaryLoanPlusDiscount(t *testing.T) {
	ledger, repo := newTestLedger(t)

	// €1000 loan over 10 weeks at 2% weekly interest, plus a flat €15/week
	// discount.
	require.NoError(t, repo.Insert(&domain.FinancingObligation{
		ID: "f1", DriverID: "drv1", Type: domain.FinancingLoan,
		Amount: 1000, Weeks: 10, WeeklyInterest: 2, Status: domain.FinancingActive,
	}))
	require.NoError(t, repo.Insert(&domain.FinancingObligation{
		ID: "f2", DriverID: "drv1", Type: domain.FinancingDiscount,
		Amount: 15, Status: domain.FinancingActive,
	}))

	s, err := ledger.WeeklySummary("drv1")
	require.NoError(t, err)

	// Interest is applied to the summed installment with the summed
	// percentages. This pins the current formula.
	assert.Equal(t, 115.0, s.TotalInstallment)
	assert.Equal(t, 2.30, s.TotalInterest)
	assert.Equal(t, 117.30, s.TotalCost)
	assert.True(t, s.HasFinancing)
	assert.Equal(t, 2, s.ObligationCount)
}

func TestWeeklySummaryNoFinancingIsPopulated(t *testing.T) {
	ledger, _ := newTestLedger(t)

	s, err := ledger.WeeklySummary("drv-without-financing")
	require.NoError(t, err)

	assert.Equal(t, 0.0, s.TotalInstallment)
	assert.Equal(t, 0.0, s.TotalInterest)
	assert.Equal(t, 0.0, s.TotalCost)
	assert.False(t, s.HasFinancing)
}

func TestWeeklySummarySkipsCompleted(t *testing.T) {
	ledger, repo := newTestLedger(t)

	require.NoError(t, repo.Insert(&domain.FinancingObligation{
		ID: "f1", DriverID: "drv1", Type: domain.FinancingDiscount,
		Amount: 50, Status: domain.FinancingCompleted,
	}))
	require.NoError(t, repo.Insert(&domain.FinancingObligation{
		ID: "f2", DriverID: "drv1", Type: domain.FinancingDiscount,
		Amount: 15, Status: domain.FinancingActive,
	}))

	s, err := ledger.WeeklySummary("drv1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, s.TotalCost)
}

func TestLoadActiveObligationsTreatsMissingStatusAsActive(t *testing.T) {
	ledger, repo := newTestLedger(t)

	// Legacy rows have an empty status.
	require.NoError(t, repo.Insert(&domain.FinancingObligation{
		ID: "f1", DriverID: "drv1", Type: domain.FinancingDiscount, Amount: 10,
	}))

	active, err := ledger.LoadActiveObligations("drv1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "f1", active[0].ID)
}

func TestSummarizeIgnoresInertLoans(t *testing.T) {
	done := 0
	obligations := []domain.FinancingObligation{
		// Fully amortized loan: contributes neither installment nor its
		// interest percentage.
		{Type: domain.FinancingLoan, Amount: 2000, Weeks: 20, RemainingWeeks: &done, WeeklyInterest: 5, Status: domain.FinancingActive},
		{Type: domain.FinancingLoan, Amount: 1000, Weeks: 10, WeeklyInterest: 2, Status: domain.FinancingActive},
	}

	s := Summarize(obligations)
	assert.Equal(t, 100.0, s.TotalInstallment)
	assert.Equal(t, 2.0, s.TotalInterest)
	assert.Equal(t, 102.0, s.TotalCost)
	assert.Equal(t, 1, s.ObligationCount)
}

func TestSummarizeZeroWeeksLoan(t *testing.T) {
	obligations := []domain.FinancingObligation{
		{Type: domain.FinancingLoan, Amount: 1000, Weeks: 0, WeeklyInterest: 2, Status: domain.FinancingActive},
	}

	s := Summarize(obligations)
	assert.Equal(t, 0.0, s.TotalCost)
	assert.False(t, s.HasFinancing)
}
