package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/timegrid/timegrid-backend/pkg/database"
)

// TimeRecord is one recorded day of worked hours. The composite natural key
// (employee_id, year, month, day) is unique; month is zero-based. A day with
// no worked hours simply has no record - distinct from a record set to 0.
type TimeRecord struct {
	ID         int64     `db:"id" json:"id"`
	EmployeeID int64     `db:"employee_id" json:"employeeId"`
	Year       int       `db:"year" json:"year"`
	Month      int       `db:"month" json:"month"`
	Day        int       `db:"day" json:"day"`
	Hours      float64   `db:"hours" json:"hours"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DayHours is the per-day slice of the month grid payload.
type DayHours struct {
	Day   int     `db:"day" json:"day"`
	Hours float64 `db:"hours" json:"hours"`
}

// MonthRecord is a raw month record joined with the employee name.
type MonthRecord struct {
	ID           int64   `db:"id" json:"id"`
	EmployeeID   int64   `db:"employee_id" json:"employeeId"`
	EmployeeName string  `db:"employee_name" json:"employeeName"`
	Year         int     `db:"year" json:"year"`
	Month        int     `db:"month" json:"month"`
	Day          int     `db:"day" json:"day"`
	Hours        float64 `db:"hours" json:"hours"`
}

// TimeRecordRepository handles time record persistence
type TimeRecordRepository struct {
	db *database.DB
}

// NewTimeRecordRepository creates a new time record repository
func NewTimeRecordRepository(db *database.DB) *TimeRecordRepository {
	return &TimeRecordRepository{db: db}
}

// ListForMonth returns every record of the month joined with employee names.
func (r *TimeRecordRepository) ListForMonth(ctx context.Context, year, month int) ([]MonthRecord, error) {
	var records []MonthRecord

	query := `
		SELECT tr.id, tr.employee_id, e.name AS employee_name,
		       tr.year, tr.month, tr.day, tr.hours
		FROM time_records tr
		JOIN employees e ON tr.employee_id = e.id
		WHERE tr.year = $1 AND tr.month = $2
		ORDER BY e.name, tr.day
	`

	if err := r.db.SelectContext(ctx, &records, query, year, month); err != nil {
		return nil, err
	}

	return records, nil
}

// MonthHoursByEmployee returns the month's recorded hours grouped per
// employee and day. The aggregation engine consumes this shape directly.
func (r *TimeRecordRepository) MonthHoursByEmployee(ctx context.Context, year, month int) (map[int64]map[int]float64, error) {
	var rows []struct {
		EmployeeID int64   `db:"employee_id"`
		Day        int     `db:"day"`
		Hours      float64 `db:"hours"`
	}

	query := `
		SELECT employee_id, day, hours
		FROM time_records
		WHERE year = $1 AND month = $2
	`

	if err := r.db.SelectContext(ctx, &rows, query, year, month); err != nil {
		return nil, err
	}

	grouped := make(map[int64]map[int]float64)
	for _, row := range rows {
		days, ok := grouped[row.EmployeeID]
		if !ok {
			days = make(map[int]float64)
			grouped[row.EmployeeID] = days
		}
		days[row.Day] = row.Hours
	}

	return grouped, nil
}

// UpsertTx inserts or updates a record inside the batch transaction, keyed on
// the composite natural key. Re-submitting the same payload is idempotent.
func (r *TimeRecordRepository) UpsertTx(ctx context.Context, tx *sqlx.Tx, rec *TimeRecord) error {
	query := `
		INSERT INTO time_records (employee_id, year, month, day, hours)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, year, month, day)
		DO UPDATE SET hours = EXCLUDED.hours, updated_at = NOW()
		RETURNING id
	`

	return tx.QueryRowxContext(ctx, query,
		rec.EmployeeID, rec.Year, rec.Month, rec.Day, rec.Hours,
	).Scan(&rec.ID)
}
