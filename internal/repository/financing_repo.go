package repository

import (
	"database/sql"

	"github.com/lisdrive/repasse/internal/domain"
)

type FinancingRepo struct {
	db *sql.DB
}

func NewFinancingRepo(db *sql.DB) *FinancingRepo {
	return &FinancingRepo{db: db}
}

func (r *FinancingRepo) Insert(o *domain.FinancingObligation) error {
	var remaining any
	if o.RemainingWeeks != nil {
		remaining = *o.RemainingWeeks
	}
	_, err := r.db.Exec(
		`INSERT INTO financing_obligations
		(id, driver_id, type, amount, weeks, remaining_weeks, weekly_interest, status)
		VALUES (?,?,?,?,?,?,?,?)`,
		o.ID, o.DriverID, string(o.Type), o.Amount, o.Weeks, remaining,
		o.WeeklyInterest, string(o.Status),
	)
	return err
}

// ListByDriver returns all obligations for a driver, completed ones included.
// The ledger filters; keeping the query broad lets callers audit history.
func (r *FinancingRepo) ListByDriver(driverID string) ([]domain.FinancingObligation, error) {
	rows, err := r.db.Query(
		"SELECT * FROM financing_obligations WHERE driver_id = ? ORDER BY id", driverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obligations []domain.FinancingObligation
	for rows.Next() {
		var o domain.FinancingObligation
		var typ, status string
		var remaining sql.NullInt64

		err := rows.Scan(
			&o.ID, &o.DriverID, &typ, &o.Amount, &o.Weeks, &remaining,
			&o.WeeklyInterest, &status,
		)
		if err != nil {
			return nil, err
		}

		o.Type = domain.FinancingType(typ)
		o.Status = domain.FinancingStatus(status)
		if remaining.Valid {
			rw := int(remaining.Int64)
			o.RemainingWeeks = &rw
		}
		obligations = append(obligations, o)
	}
	return obligations, rows.Err()
}
