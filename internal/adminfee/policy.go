// Package adminfee evaluates the administrative fee retained by the operator
// on each weekly settlement.
package adminfee

import "github.com/lisdrive/repasse/internal/domain"

// Defaults applied when the global configuration cannot be loaded. Financial
// continuity is preferred over hard failure.
const (
	DefaultPercent = 7.0
	DefaultFixed   = 25.0
)

// Config is the operator-wide fee policy, loaded once per batch run and
// threaded through every call. Computation functions never read ambient
// state.
type Config struct {
	Percent float64
	Fixed   float64
}

// DefaultConfig returns the hardcoded fallback policy.
func DefaultConfig() Config {
	return Config{Percent: DefaultPercent, Fixed: DefaultFixed}
}

// Context carries the settlement figures a fee policy may base itself on.
// The baseline policy uses GanhosMenosIVA only; the richer context exists so
// policy can evolve without signature changes.
type Context struct {
	GanhosTotal    float64
	IVAValor       float64
	GanhosMenosIVA float64
	Combustivel    float64
	Portagens      float64
	Aluguel        float64
	FinancingCost  float64
}

// Compute returns the admin fee amount for one settlement. Pure function;
// the caller rounds to 2 decimals at storage.
//
// Precedence: driver fixed override, then driver percent override, then the
// global percent. A fixed override without a value falls back to the global
// fixed amount. The result is floored at 0.
func Compute(d *domain.Driver, cfg Config, ctx Context) float64 {
	var fee float64

	switch {
	case d.AdminFee != nil && d.AdminFee.Mode == domain.AdminFeeFixed:
		fee = d.AdminFee.Value
		if fee <= 0 {
			fee = cfg.Fixed
		}
	case d.AdminFee != nil && d.AdminFee.Mode == domain.AdminFeePercent:
		fee = ctx.GanhosMenosIVA * d.AdminFee.Value / 100
	default:
		fee = ctx.GanhosMenosIVA * cfg.Percent / 100
	}

	if fee < 0 {
		return 0
	}
	return fee
}
