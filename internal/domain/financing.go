package domain

type FinancingType string

const (
	FinancingLoan     FinancingType = "loan"
	FinancingDiscount FinancingType = "discount"
)

type FinancingStatus string

const (
	FinancingActive    FinancingStatus = "active"
	FinancingCompleted FinancingStatus = "completed"
)

// FinancingObligation is a loan or recurring flat discount charged against a
// driver's weekly settlement. For a loan, Amount is the total borrowed and
// Weeks the duration; for a discount, Amount is the weekly deduction itself.
type FinancingObligation struct {
	ID             string          `json:"id"`
	DriverID       string          `json:"driver_id"`
	Type           FinancingType   `json:"type"`
	Amount         float64         `json:"amount"`
	Weeks          int             `json:"weeks,omitempty"`
	RemainingWeeks *int            `json:"remaining_weeks,omitempty"`
	WeeklyInterest float64         `json:"weekly_interest"`
	Status         FinancingStatus `json:"status"`
}

// Active reports whether the obligation should be charged. A missing status
// is treated as active (legacy documents predate the field).
func (o *FinancingObligation) Active() bool {
	return o.Status != FinancingCompleted
}

// WeeklyInstallment returns the obligation's contribution to the weekly
// deduction, before interest. A loan that is fully amortized
// (RemainingWeeks <= 0) or has no duration contributes nothing.
func (o *FinancingObligation) WeeklyInstallment() float64 {
	switch o.Type {
	case FinancingLoan:
		if o.Weeks <= 0 {
			return 0
		}
		if o.RemainingWeeks != nil && *o.RemainingWeeks <= 0 {
			return 0
		}
		return o.Amount / float64(o.Weeks)
	default:
		return o.Amount
	}
}

// FinancingSummary aggregates all of a driver's active obligations for one
// week. It is always fully populated: a driver with no financing gets a zero
// summary with HasFinancing false.
type FinancingSummary struct {
	TotalInstallment float64 `json:"total_installment"`
	TotalInterest    float64 `json:"total_interest"`
	TotalCost        float64 `json:"total_cost"`
	HasFinancing     bool    `json:"has_financing"`
	ObligationCount  int     `json:"obligation_count"`
}
