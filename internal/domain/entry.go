package domain

import "time"

type Platform string

const (
	PlatformUber     Platform = "uber"
	PlatformBolt     Platform = "bolt"
	PlatformFuelCard Platform = "fuelCard"
	PlatformTollCard Platform = "tollCard"
)

// NormalizedWeeklyEntry is one platform's earnings or expense contribution
// for one driver for one calendar week, as produced by the import pipeline.
// DriverID may be empty; the registry resolves such entries by ReferenceID
// or VehiclePlate.
type NormalizedWeeklyEntry struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driver_id,omitempty"`
	ReferenceID  string    `json:"reference_id,omitempty"`
	VehiclePlate string    `json:"vehicle_plate,omitempty"`
	Platform     Platform  `json:"platform"`
	WeekID       string    `json:"week_id"`
	WeekStart    time.Time `json:"week_start"`
	WeekEnd      time.Time `json:"week_end"`
	TotalValue   float64   `json:"total_value"`
}
