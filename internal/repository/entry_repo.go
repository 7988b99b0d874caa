package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lisdrive/repasse/internal/domain"
)

type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// BulkInsert stores normalized entries, skipping ids already present so that
// re-importing the same batch is harmless.
func (r *EntryRepo) BulkInsert(entries []domain.NormalizedWeeklyEntry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO weekly_entries
		(id, driver_id, reference_id, vehicle_plate, platform, week_id,
		 week_start, week_end, total_value)
		VALUES (?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range entries {
		e := &entries[i]
		res, err := stmt.Exec(
			e.ID, nullableStr(e.DriverID), nullableStr(e.ReferenceID),
			nullableStr(e.VehiclePlate), string(e.Platform), e.WeekID,
			e.WeekStart.Format(time.RFC3339), e.WeekEnd.Format(time.RFC3339),
			e.TotalValue,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert entry %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListByWeek returns every normalized entry for a week, across all platforms.
func (r *EntryRepo) ListByWeek(weekID string) ([]domain.NormalizedWeeklyEntry, error) {
	rows, err := r.db.Query(
		"SELECT * FROM weekly_entries WHERE week_id = ? ORDER BY id", weekID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.NormalizedWeeklyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (*domain.NormalizedWeeklyEntry, error) {
	var e domain.NormalizedWeeklyEntry
	var driverID, refID, plate sql.NullString
	var platform, startStr, endStr string

	err := rows.Scan(
		&e.ID, &driverID, &refID, &plate, &platform, &e.WeekID,
		&startStr, &endStr, &e.TotalValue,
	)
	if err != nil {
		return nil, err
	}

	e.DriverID = driverID.String
	e.ReferenceID = refID.String
	e.VehiclePlate = plate.String
	e.Platform = domain.Platform(platform)
	e.WeekStart, _ = time.Parse(time.RFC3339, startStr)
	e.WeekEnd, _ = time.Parse(time.RFC3339, endStr)

	return &e, nil
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
