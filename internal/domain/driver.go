package domain

import (
	"encoding/json"
	"strings"
)

type DriverType string

const (
	DriverAffiliate DriverType = "affiliate"
	DriverRenter    DriverType = "renter"
)

type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
)

type AdminFeeMode string

const (
	AdminFeeFixed   AdminFeeMode = "fixed"
	AdminFeePercent AdminFeeMode = "percent"
)

// Integration holds one platform's external identifier for a driver.
// Legacy driver documents store the key either as a bare string or as an
// object with a "key" field; UnmarshalJSON accepts both.
type Integration struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

func (in *Integration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		in.Key = s
		in.Enabled = true
		return nil
	}
	type alias Integration
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*in = Integration(a)
	return nil
}

// AdminFeeOverride is a per-driver admin fee policy. Value is a euro amount
// when Mode is fixed, a percentage when Mode is percent.
type AdminFeeOverride struct {
	Mode  AdminFeeMode `json:"mode"`
	Value float64      `json:"value"`
}

type Vehicle struct {
	Plate string `json:"plate"`
}

type Banking struct {
	IBAN string `json:"iban"`
}

type Driver struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Type         DriverType               `json:"type"`
	Status       DriverStatus             `json:"status"`
	RentalFee    float64                  `json:"rental_fee"`
	Integrations map[Platform]Integration `json:"integrations"`
	Vehicle      Vehicle                  `json:"vehicle"`
	AdminFee     *AdminFeeOverride        `json:"admin_fee,omitempty"`
	Commission   float64                  `json:"commission"`
	Banking      Banking                  `json:"banking"`
}

// IntegrationKey returns the lower-cased enabled key for a platform, or ""
// when the driver has no usable integration for it.
func (d *Driver) IntegrationKey(p Platform) string {
	in, ok := d.Integrations[p]
	if !ok || !in.Enabled || in.Key == "" {
		return ""
	}
	return strings.ToLower(in.Key)
}

// NormalizePlate reduces a vehicle plate to its comparable form: lower-cased
// alphanumeric characters only ("AA-12-BB" and "aa12bb" collide).
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(plate) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
