package repository

import (
	"database/sql"

	"github.com/lisdrive/repasse/internal/domain"
)

type BonusRepo struct {
	db *sql.DB
}

func NewBonusRepo(db *sql.DB) *BonusRepo {
	return &BonusRepo{db: db}
}

func (r *BonusRepo) Insert(b *domain.BonusEntry) error {
	_, err := r.db.Exec(
		`INSERT INTO weekly_bonuses
		(id, driver_id, week_id, kind, amount, description, pending)
		VALUES (?,?,?,?,?,?,?)`,
		b.ID, b.DriverID, b.WeekID, string(b.Kind), b.Amount, b.Description, b.Pending,
	)
	return err
}

// ListForDriverWeek returns the bonus credits recorded for one driver and week.
func (r *BonusRepo) ListForDriverWeek(driverID, weekID string) ([]domain.BonusEntry, error) {
	rows, err := r.db.Query(
		"SELECT * FROM weekly_bonuses WHERE driver_id = ? AND week_id = ? ORDER BY id",
		driverID, weekID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.BonusEntry
	for rows.Next() {
		var b domain.BonusEntry
		var kind string
		var pending int
		err := rows.Scan(&b.ID, &b.DriverID, &b.WeekID, &kind, &b.Amount, &b.Description, &pending)
		if err != nil {
			return nil, err
		}
		b.Kind = domain.BonusKind(kind)
		b.Pending = pending != 0
		entries = append(entries, b)
	}
	return entries, rows.Err()
}
