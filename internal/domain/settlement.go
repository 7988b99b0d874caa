package domain

import (
	"math"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// SettlementKey builds the composite identifier of a weekly settlement.
// One settlement exists per (driver, week) pair.
func SettlementKey(driverID, weekID string) string {
	return driverID + "_" + weekID
}

// Round2 rounds a monetary amount to 2 decimal places. All stored figures go
// through this at the point of storage.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecordSnapshot captures every raw input and intermediate value used to
// compute a settlement, so a record can be audited or replayed later even if
// the driver profile or financing data changes.
type RecordSnapshot struct {
	DriverType      DriverType       `json:"driver_type"`
	RentalFee       float64          `json:"rental_fee"`
	VATPercent      float64          `json:"vat_percent"`
	AdminFeeMode    string           `json:"admin_fee_mode"`
	AdminFeePercent float64          `json:"admin_fee_percent"`
	UberRaw         float64          `json:"uber_raw"`
	BoltRaw         float64          `json:"bolt_raw"`
	FuelRaw         float64          `json:"fuel_raw"`
	TollsRaw        float64          `json:"tolls_raw"`
	EntryCount      int              `json:"entry_count"`
	Financing       FinancingSummary `json:"financing"`
	BonusMeta       float64          `json:"bonus_meta"`
	BonusReferral   float64          `json:"bonus_referral"`
	Commission      float64          `json:"commission"`
	ComputedAt      time.Time        `json:"computed_at"`
}

// WeeklySettlement is the persisted per-driver-per-week financial record,
// the core output of the settlement engine. Created exactly once per
// (driver, week); financial fields never change after a record is paid.
type WeeklySettlement struct {
	ID         string    `json:"id"`
	DriverID   string    `json:"driver_id"`
	DriverName string    `json:"driver_name"`
	WeekID     string    `json:"week_id"`
	WeekStart  time.Time `json:"week_start"`
	WeekEnd    time.Time `json:"week_end"`

	// Gross figures.
	UberTotal      float64 `json:"uber_total"`
	BoltTotal      float64 `json:"bolt_total"`
	GanhosTotal    float64 `json:"ganhos_total"`
	IVAValor       float64 `json:"iva_valor"`
	GanhosMenosIVA float64 `json:"ganhos_menos_iva"`

	// Deductions.
	DespesasAdm float64          `json:"despesas_adm"`
	Combustivel float64          `json:"combustivel"`
	Portagens   float64          `json:"portagens"`
	Aluguel     float64          `json:"aluguel"`
	Financing   FinancingSummary `json:"financing"`

	// Additive items.
	BonusMetaAmount     float64 `json:"bonus_meta_amount"`
	BonusReferralAmount float64 `json:"bonus_referral_amount"`
	CommissionAmount    float64 `json:"commission_amount"`

	// TotalDespesas excludes the admin fee, which is displayed separately.
	TotalDespesas float64 `json:"total_despesas"`
	Repasse       float64 `json:"repasse"`

	PaymentStatus PaymentStatus  `json:"payment_status"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentProof  string         `json:"payment_proof,omitempty"`
	Snapshot      RecordSnapshot `json:"record_snapshot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
