package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lisdrive/repasse/internal/domain"
)

// ErrPaidImmutable is returned when a write would touch the financial or
// payment fields of a settlement already marked paid.
var ErrPaidImmutable = errors.New("settlement already paid; record is immutable")

type SettlementRepo struct {
	db *sql.DB
}

func NewSettlementRepo(db *sql.DB) *SettlementRepo {
	return &SettlementRepo{db: db}
}

const settlementCols = `id, driver_id, driver_name, week_id, week_start, week_end,
	uber_total, bolt_total, ganhos_total, iva_valor, ganhos_menos_iva,
	despesas_adm, combustivel, portagens, aluguel,
	financing_installment, financing_interest, financing_total, has_financing, financing_count,
	bonus_meta, bonus_referral, commission, total_despesas, repasse,
	payment_status, paid_at, payment_proof, record_snapshot, created_at, updated_at`

// GetByKey returns the settlement for a (driver, week) composite key, or
// ErrNotFound.
func (r *SettlementRepo) GetByKey(driverID, weekID string) (*domain.WeeklySettlement, error) {
	return r.GetByID(domain.SettlementKey(driverID, weekID))
}

func (r *SettlementRepo) GetByID(id string) (*domain.WeeklySettlement, error) {
	row := r.db.QueryRow(
		"SELECT "+settlementCols+" FROM weekly_settlements WHERE id = ?", id,
	)
	s, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *SettlementRepo) Insert(s *domain.WeeklySettlement) error {
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var paidAt any
	if s.PaidAt != nil {
		paidAt = s.PaidAt.Format(time.RFC3339)
	}

	_, err = r.db.Exec(
		`INSERT INTO weekly_settlements (`+settlementCols+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.ID, s.DriverID, s.DriverName, s.WeekID,
		s.WeekStart.Format(time.RFC3339), s.WeekEnd.Format(time.RFC3339),
		s.UberTotal, s.BoltTotal, s.GanhosTotal, s.IVAValor, s.GanhosMenosIVA,
		s.DespesasAdm, s.Combustivel, s.Portagens, s.Aluguel,
		s.Financing.TotalInstallment, s.Financing.TotalInterest,
		s.Financing.TotalCost, s.Financing.HasFinancing, s.Financing.ObligationCount,
		s.BonusMetaAmount, s.BonusReferralAmount, s.CommissionAmount,
		s.TotalDespesas, s.Repasse,
		string(s.PaymentStatus), paidAt, nullableStr(s.PaymentProof),
		string(snapshot),
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

// UpdateFinancials rewrites the computed figures of an existing settlement.
// The payment fields are deliberately left out of the UPDATE, and a paid row
// is never touched: the WHERE clause is the authoritative guard.
func (r *SettlementRepo) UpdateFinancials(s *domain.WeeklySettlement) error {
	snapshot, err := json.Marshal(s.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	res, err := r.db.Exec(
		`UPDATE weekly_settlements SET
			driver_name = ?, week_start = ?, week_end = ?,
			uber_total = ?, bolt_total = ?, ganhos_total = ?, iva_valor = ?, ganhos_menos_iva = ?,
			despesas_adm = ?, combustivel = ?, portagens = ?, aluguel = ?,
			financing_installment = ?, financing_interest = ?, financing_total = ?,
			has_financing = ?, financing_count = ?,
			bonus_meta = ?, bonus_referral = ?, commission = ?,
			total_despesas = ?, repasse = ?, record_snapshot = ?, updated_at = ?
		WHERE id = ? AND payment_status != ?`,
		s.DriverName, s.WeekStart.Format(time.RFC3339), s.WeekEnd.Format(time.RFC3339),
		s.UberTotal, s.BoltTotal, s.GanhosTotal, s.IVAValor, s.GanhosMenosIVA,
		s.DespesasAdm, s.Combustivel, s.Portagens, s.Aluguel,
		s.Financing.TotalInstallment, s.Financing.TotalInterest, s.Financing.TotalCost,
		s.Financing.HasFinancing, s.Financing.ObligationCount,
		s.BonusMetaAmount, s.BonusReferralAmount, s.CommissionAmount,
		s.TotalDespesas, s.Repasse, string(snapshot), time.Now().UTC().Format(time.RFC3339),
		s.ID, string(domain.PaymentPaid),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaidImmutable
	}
	return nil
}

// MarkPaid sets the payment status and proof metadata on a pending
// settlement. Financial fields are untouched; an already-paid settlement is
// not re-marked.
func (r *SettlementRepo) MarkPaid(id, proof string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.Exec(
		`UPDATE weekly_settlements
		SET payment_status = ?, paid_at = ?, payment_proof = ?, updated_at = ?
		WHERE id = ? AND payment_status = ?`,
		string(domain.PaymentPaid), now, nullableStr(proof), now,
		id, string(domain.PaymentPending),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a missing row from a non-pending one.
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return ErrPaidImmutable
	}
	return nil
}

type SettlementFilter struct {
	WeekID   string
	DriverID string
	Status   string
	Page     int
	Limit    int
}

func (r *SettlementRepo) List(f SettlementFilter) ([]domain.WeeklySettlement, int, error) {
	where, args := buildSettlementWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM weekly_settlements"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT " + settlementCols + " FROM weekly_settlements" + where +
		" ORDER BY week_id DESC, driver_id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var settlements []domain.WeeklySettlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, err
		}
		settlements = append(settlements, *s)
	}
	return settlements, total, rows.Err()
}

// WeekTotals aggregates the stored settlements of one week for the dashboard.
type WeekTotals struct {
	Settlements   int     `json:"settlements"`
	PaidCount     int     `json:"paid_count"`
	GanhosTotal   float64 `json:"ganhos_total"`
	DespesasAdm   float64 `json:"despesas_adm"`
	TotalDespesas float64 `json:"total_despesas"`
	RepasseTotal  float64 `json:"repasse_total"`
}

func (r *SettlementRepo) TotalsByWeek(weekID string) (*WeekTotals, error) {
	var t WeekTotals
	err := r.db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(ganhos_total), 0),
			COALESCE(SUM(despesas_adm), 0),
			COALESCE(SUM(total_despesas), 0),
			COALESCE(SUM(repasse), 0)
		FROM weekly_settlements WHERE week_id = ?`, weekID,
	).Scan(&t.Settlements, &t.PaidCount, &t.GanhosTotal, &t.DespesasAdm,
		&t.TotalDespesas, &t.RepasseTotal)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func buildSettlementWhere(f SettlementFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.WeekID != "" {
		clauses = append(clauses, "week_id = ?")
		args = append(args, f.WeekID)
	}
	if f.DriverID != "" {
		clauses = append(clauses, "driver_id = ?")
		args = append(args, f.DriverID)
	}
	if f.Status != "" {
		clauses = append(clauses, "payment_status = ?")
		args = append(args, f.Status)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanSettlement(row rowScanner) (*domain.WeeklySettlement, error) {
	var s domain.WeeklySettlement
	var startStr, endStr, status, snapshotStr, createdStr, updatedStr string
	var paidAt, proof sql.NullString
	var hasFinancing int

	err := row.Scan(
		&s.ID, &s.DriverID, &s.DriverName, &s.WeekID, &startStr, &endStr,
		&s.UberTotal, &s.BoltTotal, &s.GanhosTotal, &s.IVAValor, &s.GanhosMenosIVA,
		&s.DespesasAdm, &s.Combustivel, &s.Portagens, &s.Aluguel,
		&s.Financing.TotalInstallment, &s.Financing.TotalInterest,
		&s.Financing.TotalCost, &hasFinancing, &s.Financing.ObligationCount,
		&s.BonusMetaAmount, &s.BonusReferralAmount, &s.CommissionAmount,
		&s.TotalDespesas, &s.Repasse,
		&status, &paidAt, &proof, &snapshotStr, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	s.Financing.HasFinancing = hasFinancing != 0
	s.PaymentStatus = domain.PaymentStatus(status)
	s.WeekStart, _ = time.Parse(time.RFC3339, startStr)
	s.WeekEnd, _ = time.Parse(time.RFC3339, endStr)
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339, paidAt.String)
		if err == nil {
			s.PaidAt = &t
		}
	}
	s.PaymentProof = proof.String
	if err := json.Unmarshal([]byte(snapshotStr), &s.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot for %s: %w", s.ID, err)
	}

	return &s, nil
}
