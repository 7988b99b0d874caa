package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lisdrive/repasse/internal/domain"
)

type DriverRepo struct {
	db *sql.DB
}

func NewDriverRepo(db *sql.DB) *DriverRepo {
	return &DriverRepo{db: db}
}

func (r *DriverRepo) Insert(d *domain.Driver) error {
	integ, err := json.Marshal(d.Integrations)
	if err != nil {
		return fmt.Errorf("marshal integrations: %w", err)
	}

	var feeMode, feeValue any
	if d.AdminFee != nil {
		feeMode = string(d.AdminFee.Mode)
		feeValue = d.AdminFee.Value
	}

	_, err = r.db.Exec(
		`INSERT INTO drivers
		(id, name, type, status, rental_fee, integrations, vehicle_plate,
		 admin_fee_mode, admin_fee_value, commission, iban)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Name, string(d.Type), string(d.Status), d.RentalFee, string(integ),
		d.Vehicle.Plate, feeMode, feeValue, d.Commission, d.Banking.IBAN,
	)
	return err
}

func (r *DriverRepo) GetByID(id string) (*domain.Driver, error) {
	row := r.db.QueryRow("SELECT * FROM drivers WHERE id = ?", id)
	d, err := scanDriver(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

// ListAll returns every driver regardless of status. The registry index wants
// the full list so that resolution misses can be told apart from inactive
// drivers.
func (r *DriverRepo) ListAll() ([]domain.Driver, error) {
	rows, err := r.db.Query("SELECT * FROM drivers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	return drivers, rows.Err()
}

func (r *DriverRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM drivers").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var typ, status, integ string
	var feeMode sql.NullString
	var feeValue sql.NullFloat64

	err := row.Scan(
		&d.ID, &d.Name, &typ, &status, &d.RentalFee, &integ, &d.Vehicle.Plate,
		&feeMode, &feeValue, &d.Commission, &d.Banking.IBAN,
	)
	if err != nil {
		return nil, err
	}

	d.Type = domain.DriverType(typ)
	d.Status = domain.DriverStatus(status)
	if err := json.Unmarshal([]byte(integ), &d.Integrations); err != nil {
		return nil, fmt.Errorf("unmarshal integrations for %s: %w", d.ID, err)
	}
	if feeMode.Valid {
		d.AdminFee = &domain.AdminFeeOverride{
			Mode:  domain.AdminFeeMode(feeMode.String),
			Value: feeValue.Float64,
		}
	}

	return &d, nil
}
