// Package bonus exposes the bonus/commission amounts credited to a driver's
// weekly settlement. The settlement engine only consumes the aggregate; it
// never decides bonus eligibility itself.
package bonus

import (
	"time"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
)

// Request identifies the driver/week a bonus lookup is for, with the gross
// figures some bonus policies key on.
type Request struct {
	DriverID      string
	DriverName    string
	WeekID        string
	WeekStart     time.Time
	GrossEarnings float64
	TripCount     int
}

// PendingDetail describes a credit that could not be finalized this week.
type PendingDetail struct {
	Kind        domain.BonusKind `json:"kind"`
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
}

// Breakdown is the aggregated bonus result added to a settlement's repasse.
type Breakdown struct {
	MetaAmount       float64         `json:"bonus_meta_amount"`
	ReferralAmount   float64         `json:"bonus_referral_amount"`
	CommissionAmount float64         `json:"commission_amount"`
	Total            float64         `json:"total_bonus_amount"`
	Pending          []PendingDetail `json:"pending_details,omitempty"`
}

// Aggregator is the consumed interface. Implementations may fail; the engine
// degrades to a zero Breakdown and keeps processing.
type Aggregator interface {
	WeeklyBonuses(req Request) (Breakdown, error)
}

// None is an Aggregator that credits nothing. Used when the bonus services
// are not deployed.
type None struct{}

func (None) WeeklyBonuses(Request) (Breakdown, error) {
	return Breakdown{}, nil
}

// Stored reads pre-computed bonus credits from the weekly_bonuses table,
// written by the goal/referral/commission services upstream.
type Stored struct {
	repo *repository.BonusRepo
}

func NewStored(repo *repository.BonusRepo) *Stored {
	return &Stored{repo: repo}
}

func (s *Stored) WeeklyBonuses(req Request) (Breakdown, error) {
	entries, err := s.repo.ListForDriverWeek(req.DriverID, req.WeekID)
	if err != nil {
		return Breakdown{}, err
	}

	var b Breakdown
	for _, e := range entries {
		if e.Pending {
			b.Pending = append(b.Pending, PendingDetail{
				Kind:        e.Kind,
				Description: e.Description,
				Amount:      e.Amount,
			})
			continue
		}
		switch e.Kind {
		case domain.BonusGoal:
			b.MetaAmount += e.Amount
		case domain.BonusReferral:
			b.ReferralAmount += e.Amount
		case domain.BonusCommission:
			b.CommissionAmount += e.Amount
		}
	}
	b.Total = b.MetaAmount + b.ReferralAmount + b.CommissionAmount

	return b, nil
}
