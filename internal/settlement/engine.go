package settlement

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lisdrive/repasse/internal/adminfee"
	"github.com/lisdrive/repasse/internal/bonus"
	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/financing"
	"github.com/lisdrive/repasse/internal/registry"
	"github.com/lisdrive/repasse/internal/repository"
)

// Config carries the two operator-wide rates the engine applies. They default
// to the current Portuguese TVDE practice (6% VAT withholding, 7% admin fee)
// but are configuration, not business law.
type Config struct {
	VATPercent float64
	Fee        adminfee.Config
}

func DefaultConfig() Config {
	return Config{VATPercent: 6, Fee: adminfee.DefaultConfig()}
}

// Engine computes weekly driver settlements from normalized platform entries.
type Engine struct {
	drivers *repository.DriverRepo
	entries *repository.EntryRepo
	ledger  *financing.Ledger
	bonuses bonus.Aggregator
	gate    *Gate
	cfg     Config
}

func NewEngine(
	drivers *repository.DriverRepo,
	entries *repository.EntryRepo,
	ledger *financing.Ledger,
	bonuses bonus.Aggregator,
	gate *Gate,
	cfg Config,
) *Engine {
	return &Engine{
		drivers: drivers,
		entries: entries,
		ledger:  ledger,
		bonuses: bonuses,
		gate:    gate,
		cfg:     cfg,
	}
}

// Options restricts or alters a processing run.
type Options struct {
	// DriverID limits the run to a single driver.
	DriverID string
	// ForceRefresh recomputes existing settlements. Paid records are still
	// protected by the gate.
	ForceRefresh bool
}

// DriverResult is the per-driver outcome of a processing run. A failed driver
// never aborts the rest of the run.
type DriverResult struct {
	DriverID   string                   `json:"driver_id"`
	DriverName string                   `json:"driver_name,omitempty"`
	Success    bool                     `json:"success"`
	Computed   bool                     `json:"computed"`
	Skipped    bool                     `json:"skipped,omitempty"`
	Reason     string                   `json:"reason,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Settlement *domain.WeeklySettlement `json:"settlement,omitempty"`
}

// WeekResult summarises a full processing run for one week.
type WeekResult struct {
	RunID           string         `json:"run_id"`
	WeekID          string         `json:"week_id"`
	DirectMatched   int            `json:"direct_matched"`
	FallbackMatched int            `json:"fallback_matched"`
	SkippedEntries  int            `json:"skipped_entries"`
	Results         []DriverResult `json:"results"`
}

type driverGroup struct {
	driver  *domain.Driver
	entries []domain.NormalizedWeeklyEntry
}

// ProcessWeek aggregates the week's normalized entries by resolved driver and
// runs the full deduction/bonus pipeline for each. An empty week is an empty
// result, not an error.
func (e *Engine) ProcessWeek(weekID string, opts Options) (*WeekResult, error) {
	result := &WeekResult{RunID: uuid.NewString(), WeekID: weekID}

	entries, err := e.entries.ListByWeek(weekID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if len(entries) == 0 {
		log.Printf("[engine] week %s: no entries", weekID)
		return result, nil
	}

	drivers, err := e.drivers.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	ix := registry.Build(drivers)

	groups := make(map[string]*driverGroup)
	for i := range entries {
		entry := &entries[i]
		d, method := ix.Resolve(entry)
		switch method {
		case registry.MethodDirect:
			result.DirectMatched++
		case registry.MethodPlatformKey, registry.MethodPlate:
			result.FallbackMatched++
		default:
			result.SkippedEntries++
			log.Printf("[engine] week %s: entry %s (%s) unresolved, skipping",
				weekID, entry.ID, entry.Platform)
			continue
		}

		g, ok := groups[d.ID]
		if !ok {
			g = &driverGroup{driver: d}
			groups[d.ID] = g
		}
		g.entries = append(g.entries, *entry)
	}

	log.Printf("[engine] week %s: resolved %d entries (direct=%d, fallback=%d, skipped=%d) across %d drivers",
		weekID, result.DirectMatched+result.FallbackMatched,
		result.DirectMatched, result.FallbackMatched, result.SkippedEntries, len(groups))

	// Deterministic processing order.
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		g := groups[id]
		if opts.DriverID != "" && opts.DriverID != id {
			continue
		}

		if g.driver.Status != domain.DriverActive {
			log.Printf("[engine] week %s: driver %s is %s, skipping", weekID, id, g.driver.Status)
			result.Results = append(result.Results, DriverResult{
				DriverID:   id,
				DriverName: g.driver.Name,
				Skipped:    true,
				Reason:     "driver not active",
			})
			continue
		}

		settled, computed, err := e.gate.GetOrCreate(id, weekID, opts.ForceRefresh, func() (*domain.WeeklySettlement, error) {
			return e.computeSettlement(g.driver, weekID, g.entries)
		})
		if err != nil {
			log.Printf("[engine] week %s: driver %s failed: %v", weekID, id, err)
			result.Results = append(result.Results, DriverResult{
				DriverID:   id,
				DriverName: g.driver.Name,
				Error:      err.Error(),
			})
			continue
		}

		result.Results = append(result.Results, DriverResult{
			DriverID:   id,
			DriverName: g.driver.Name,
			Success:    true,
			Computed:   computed,
			Settlement: settled,
		})
	}

	return result, nil
}

// computeSettlement runs the arithmetic pipeline for one driver. Order
// matters: the financing cost must exist before the admin fee, whose context
// includes it.
func (e *Engine) computeSettlement(d *domain.Driver, weekID string, entries []domain.NormalizedWeeklyEntry) (*domain.WeeklySettlement, error) {
	var uber, bolt, fuel, tollsRaw float64
	var weekStart, weekEnd time.Time
	earningEntries := 0

	for i := range entries {
		entry := &entries[i]
		switch entry.Platform {
		case domain.PlatformUber:
			uber += entry.TotalValue
			earningEntries++
		case domain.PlatformBolt:
			bolt += entry.TotalValue
			earningEntries++
		case domain.PlatformFuelCard:
			fuel += entry.TotalValue
		case domain.PlatformTollCard:
			tollsRaw += entry.TotalValue
		}
		if weekStart.IsZero() || (!entry.WeekStart.IsZero() && entry.WeekStart.Before(weekStart)) {
			weekStart = entry.WeekStart
		}
		if entry.WeekEnd.After(weekEnd) {
			weekEnd = entry.WeekEnd
		}
	}

	// Fuel and tolls are costs; they never join the gross earnings.
	ganhosTotal := uber + bolt
	ivaValor := domain.Round2(ganhosTotal * e.cfg.VATPercent / 100)
	ganhosMenosIVA := domain.Round2(ganhosTotal - ivaValor)

	// Tolls and rent are charged only to renters; affiliates run their own
	// vehicle and pay tolls directly.
	var portagens, aluguel float64
	if d.Type == domain.DriverRenter {
		portagens = tollsRaw
		aluguel = d.RentalFee
	}

	finSummary, err := e.ledger.WeeklySummary(d.ID)
	if err != nil {
		return nil, fmt.Errorf("financing for %s: %w", d.ID, err)
	}

	feeCtx := adminfee.Context{
		GanhosTotal:    ganhosTotal,
		IVAValor:       ivaValor,
		GanhosMenosIVA: ganhosMenosIVA,
		Combustivel:    fuel,
		Portagens:      portagens,
		Aluguel:        aluguel,
		FinancingCost:  finSummary.TotalCost,
	}
	despesasAdm := domain.Round2(adminfee.Compute(d, e.cfg.Fee, feeCtx))

	bonuses, err := e.bonuses.WeeklyBonuses(bonus.Request{
		DriverID:      d.ID,
		DriverName:    d.Name,
		WeekID:        weekID,
		WeekStart:     weekStart,
		GrossEarnings: ganhosTotal,
		TripCount:     earningEntries,
	})
	if err != nil {
		log.Printf("[engine] WARNING: bonus aggregation failed for %s/%s, using zero: %v",
			d.ID, weekID, err)
		bonuses = bonus.Breakdown{}
	}

	totalDespesas := domain.Round2(fuel + portagens + aluguel + finSummary.TotalCost)
	repasse := domain.Round2(ganhosMenosIVA - despesasAdm - totalDespesas +
		bonuses.MetaAmount + bonuses.ReferralAmount + bonuses.CommissionAmount)

	now := time.Now().UTC()
	feeMode := "default"
	if d.AdminFee != nil {
		feeMode = string(d.AdminFee.Mode)
	}

	return &domain.WeeklySettlement{
		ID:         domain.SettlementKey(d.ID, weekID),
		DriverID:   d.ID,
		DriverName: d.Name,
		WeekID:     weekID,
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,

		UberTotal:      domain.Round2(uber),
		BoltTotal:      domain.Round2(bolt),
		GanhosTotal:    domain.Round2(ganhosTotal),
		IVAValor:       ivaValor,
		GanhosMenosIVA: ganhosMenosIVA,

		DespesasAdm: despesasAdm,
		Combustivel: domain.Round2(fuel),
		Portagens:   domain.Round2(portagens),
		Aluguel:     domain.Round2(aluguel),
		Financing:   finSummary,

		BonusMetaAmount:     domain.Round2(bonuses.MetaAmount),
		BonusReferralAmount: domain.Round2(bonuses.ReferralAmount),
		CommissionAmount:    domain.Round2(bonuses.CommissionAmount),

		TotalDespesas: totalDespesas,
		Repasse:       repasse,

		Snapshot: domain.RecordSnapshot{
			DriverType:      d.Type,
			RentalFee:       d.RentalFee,
			VATPercent:      e.cfg.VATPercent,
			AdminFeeMode:    feeMode,
			AdminFeePercent: e.cfg.Fee.Percent,
			UberRaw:         uber,
			BoltRaw:         bolt,
			FuelRaw:         fuel,
			TollsRaw:        tollsRaw,
			EntryCount:      len(entries),
			Financing:       finSummary,
			BonusMeta:       bonuses.MetaAmount,
			BonusReferral:   bonuses.ReferralAmount,
			Commission:      bonuses.CommissionAmount,
			ComputedAt:      now,
		},

		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DeriveForDisplay merges live platform figures with the stored fixed-cost
// snapshot of an existing settlement. Read-only: nothing is persisted, and
// the stored record (paid or not) is never modified. This backs dashboard
// views that want current platform numbers next to the frozen deductions.
func (e *Engine) DeriveForDisplay(driverID, weekID string) (*domain.WeeklySettlement, error) {
	stored, err := e.gate.Stored(driverID, weekID)
	if err != nil {
		return nil, err
	}

	entries, err := e.entries.ListByWeek(weekID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	drivers, err := e.drivers.ListAll()
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	ix := registry.Build(drivers)

	var uber, bolt, fuel, tollsRaw float64
	for i := range entries {
		entry := &entries[i]
		d, method := ix.Resolve(entry)
		if method == registry.MethodNone || d.ID != driverID {
			continue
		}
		switch entry.Platform {
		case domain.PlatformUber:
			uber += entry.TotalValue
		case domain.PlatformBolt:
			bolt += entry.TotalValue
		case domain.PlatformFuelCard:
			fuel += entry.TotalValue
		case domain.PlatformTollCard:
			tollsRaw += entry.TotalValue
		}
	}

	vat := stored.Snapshot.VATPercent
	if vat == 0 {
		vat = e.cfg.VATPercent
	}

	derived := *stored
	derived.UberTotal = domain.Round2(uber)
	derived.BoltTotal = domain.Round2(bolt)
	derived.GanhosTotal = domain.Round2(uber + bolt)
	derived.IVAValor = domain.Round2(derived.GanhosTotal * vat / 100)
	derived.GanhosMenosIVA = domain.Round2(derived.GanhosTotal - derived.IVAValor)
	derived.Combustivel = domain.Round2(fuel)
	if stored.Snapshot.DriverType == domain.DriverRenter {
		derived.Portagens = domain.Round2(tollsRaw)
	} else {
		derived.Portagens = 0
	}
	// Rent, financing and the admin fee stay frozen at their stored values.
	derived.TotalDespesas = domain.Round2(derived.Combustivel + derived.Portagens +
		stored.Aluguel + stored.Financing.TotalCost)
	derived.Repasse = domain.Round2(derived.GanhosMenosIVA - stored.DespesasAdm -
		derived.TotalDespesas + stored.BonusMetaAmount + stored.BonusReferralAmount +
		stored.CommissionAmount)

	return &derived, nil
}
