package settlement

import (
	"errors"
	"fmt"
	"log"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
)

// Gate is the single authoritative decision point for settlement writes.
// Once a settlement exists for a (driver, week) key it is not recomputed
// unless the caller explicitly forces a refresh, and a paid record is never
// recomputed at all. Every write path goes through here; call sites must not
// re-check payment status themselves.
//
// The existence-check-then-create is not safe under concurrent writers for
// the same key; settlement runs for a week are expected to come from a single
// coordinator at a time.
type Gate struct {
	repo *repository.SettlementRepo
}

func NewGate(repo *repository.SettlementRepo) *Gate {
	return &Gate{repo: repo}
}

// ComputeFn produces a fresh settlement for a (driver, week) pair. It is only
// invoked when the gate decides a computation is needed.
type ComputeFn func() (*domain.WeeklySettlement, error)

// GetOrCreate returns the settlement for the key, computing and persisting it
// only when absent (or when force is set and the record is not paid). The
// second return value reports whether compute ran.
func (g *Gate) GetOrCreate(driverID, weekID string, force bool, compute ComputeFn) (*domain.WeeklySettlement, bool, error) {
	existing, err := g.repo.GetByKey(driverID, weekID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup settlement: %w", err)
	}

	if existing != nil {
		if !force {
			return existing, false, nil
		}
		if existing.PaymentStatus == domain.PaymentPaid {
			log.Printf("[gate] settlement %s is paid; refusing refresh", existing.ID)
			return existing, false, nil
		}

		fresh, err := compute()
		if err != nil {
			return nil, false, err
		}
		// Payment fields and creation time are owned by the stored record.
		fresh.PaymentStatus = existing.PaymentStatus
		fresh.PaidAt = existing.PaidAt
		fresh.PaymentProof = existing.PaymentProof
		fresh.CreatedAt = existing.CreatedAt
		if err := g.repo.UpdateFinancials(fresh); err != nil {
			return nil, false, fmt.Errorf("refresh settlement: %w", err)
		}
		return fresh, true, nil
	}

	fresh, err := compute()
	if err != nil {
		return nil, false, err
	}
	fresh.PaymentStatus = domain.PaymentPending
	if err := g.repo.Insert(fresh); err != nil {
		return nil, false, fmt.Errorf("persist settlement: %w", err)
	}
	return fresh, true, nil
}

// Stored returns the persisted settlement without any computation. Read-only
// counterpart of GetOrCreate.
func (g *Gate) Stored(driverID, weekID string) (*domain.WeeklySettlement, error) {
	return g.repo.GetByKey(driverID, weekID)
}
