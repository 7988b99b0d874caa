package financing

import (
	"fmt"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
)

// Ledger loads a driver's financing obligations and derives the weekly cost
// charged against the settlement.
type Ledger struct {
	repo *repository.FinancingRepo
}

func NewLedger(repo *repository.FinancingRepo) *Ledger {
	return &Ledger{repo: repo}
}

// LoadActiveObligations returns the driver's obligations minus completed
// ones. A missing status counts as active; legacy obligation documents
// predate the status field.
func (l *Ledger) LoadActiveObligations(driverID string) ([]domain.FinancingObligation, error) {
	all, err := l.repo.ListByDriver(driverID)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}

	active := make([]domain.FinancingObligation, 0, len(all))
	for _, o := range all {
		if o.Active() {
			active = append(active, o)
		}
	}
	return active, nil
}

// WeeklySummary aggregates the weekly cost of all active obligations.
//
// Interest is computed on the summed installment using the summed interest
// percentages, not obligation-by-obligation. This mirrors how the figure is
// presented to drivers; with several obligations at very different rates it
// is not equivalent to per-obligation interest. Pinned by test — do not
// change without product sign-off.
func (l *Ledger) WeeklySummary(driverID string) (domain.FinancingSummary, error) {
	obligations, err := l.LoadActiveObligations(driverID)
	if err != nil {
		return domain.FinancingSummary{}, err
	}
	return Summarize(obligations), nil
}

// Summarize derives the weekly financing summary from a set of active
// obligations. Fully amortized loans contribute neither installment nor
// interest percentage.
func Summarize(obligations []domain.FinancingObligation) domain.FinancingSummary {
	var summary domain.FinancingSummary
	var totalInstallment, interestPct float64

	for i := range obligations {
		o := &obligations[i]
		installment := o.WeeklyInstallment()
		if installment <= 0 {
			continue
		}
		totalInstallment += installment
		interestPct += o.WeeklyInterest
		summary.ObligationCount++
	}

	summary.TotalInstallment = domain.Round2(totalInstallment)
	summary.TotalInterest = domain.Round2(totalInstallment * interestPct / 100)
	summary.TotalCost = domain.Round2(totalInstallment + summary.TotalInterest)
	summary.HasFinancing = summary.TotalCost > 0

	return summary
}
