package domain

type BonusKind string

const (
	BonusGoal       BonusKind = "goal"
	BonusReferral   BonusKind = "referral"
	BonusCommission BonusKind = "commission"
)

// BonusEntry is one pre-computed bonus or commission credit for a driver and
// week, written by the bonus services upstream of settlement.
type BonusEntry struct {
	ID          string    `json:"id"`
	DriverID    string    `json:"driver_id"`
	WeekID      string    `json:"week_id"`
	Kind        BonusKind `json:"kind"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Pending     bool      `json:"pending"`
}
