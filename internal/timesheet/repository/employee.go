package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/timegrid/timegrid-backend/internal/timesheet/rules"
	"github.com/timegrid/timegrid-backend/pkg/database"
	"github.com/timegrid/timegrid-backend/pkg/errors"
)

// Employee represents an employee with an employment window.
// JSON field names match the wire format the browser client consumes.
type Employee struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	StartDate time.Time  `db:"start_date" json:"startDate"`
	EndDate   *time.Time `db:"end_date" json:"endDate"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Window returns the employee's employment window for the validity rules.
func (e *Employee) Window() rules.EmploymentWindow {
	return rules.EmploymentWindow{Start: e.StartDate, End: e.EndDate}
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee. A duplicate email surfaces as a Conflict
// through the unique constraint.
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	query := `
		INSERT INTO employees (name, email, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		emp.Name, emp.Email, emp.StartDate, emp.EndDate,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*Employee, error) {
	var emp Employee

	query := `
		SELECT id, name, email, start_date, end_date, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &emp, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// List lists all employees ordered by name
func (r *EmployeeRepository) List(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee

	query := `
		SELECT id, name, email, start_date, end_date, created_at, updated_at
		FROM employees
		ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, err
	}

	return employees, nil
}

// ListActiveInMonth returns employees whose employment window overlaps the
// given month: hired no later than the month's last day and not terminated
// before its first day. This is the edit-mode roster.
func (r *EmployeeRepository) ListActiveInMonth(ctx context.Context, first, last time.Time) ([]*Employee, error) {
	var employees []*Employee

	query := `
		SELECT id, name, email, start_date, end_date, created_at, updated_at
		FROM employees
		WHERE start_date <= $2
		  AND (end_date IS NULL OR end_date >= $1)
		ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &employees, query, first, last); err != nil {
		return nil, err
	}

	return employees, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	query := `
		UPDATE employees SET
			name = $2, email = $3, start_date = $4, end_date = $5, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email, emp.StartDate, emp.EndDate,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}

// Delete deletes an employee. Time records cascade at the schema level.
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM employees WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}
