package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/timegrid/timegrid-backend/internal/timesheet/calendar"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/internal/timesheet/rules"
	"github.com/timegrid/timegrid-backend/pkg/database"
	"github.com/timegrid/timegrid-backend/pkg/errors"
)

// Batch item failure reasons, mirrored in the per-item error payload.
const (
	ReasonInvalidParameters = "invalid_parameters"
	ReasonNotFound          = "not_found"
	ReasonBusinessRule      = "business_rule_violation"
	ReasonInternal          = "internal_error"
)

// BatchItem is the per-record outcome of a batch save. Successful items carry
// status "success"; rejected items carry status "error" plus a machine-readable
// reason and a human-readable message.
type BatchItem struct {
	EmployeeID int64    `json:"employeeId"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	Day        int      `json:"day"`
	Hours      *float64 `json:"hours,omitempty"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// BatchResult is the full outcome of a batch save. Success is true only when
// every submitted record was persisted.
type BatchResult struct {
	Success bool        `json:"success"`
	Results []BatchItem `json:"results"`
	Errors  []BatchItem `json:"errors"`
}

// SaveBatch validates and persists a batch of time records. Each record is
// judged independently: malformed, unknown-employee, and non-editable-cell
// records are rejected per item while the rest of the batch proceeds. Accepted
// records are upserted in one transaction that commits even when some items
// were rejected; only an unexpected database failure rolls the whole batch
// back.
func (s *TimesheetService) SaveBatch(ctx context.Context, records []rules.RecordInput) (*BatchResult, error) {
	result := &BatchResult{
		Results: make([]BatchItem, 0, len(records)),
		Errors:  make([]BatchItem, 0),
	}

	today := s.now()
	windows := make(map[int64]*rules.EmploymentWindow)
	accepted := make([]rules.RecordInput, 0, len(records))

	for _, rec := range records {
		if err := rules.ValidateRecord(rec); err != nil {
			result.Errors = append(result.Errors, rejected(rec, errors.InvalidParameters(err.Error())))
			continue
		}

		window, err := s.employmentWindow(ctx, windows, rec.EmployeeID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				result.Errors = append(result.Errors, rejected(rec, errors.NotFound("employee")))
				continue
			}
			return nil, err
		}

		if reason := s.classifyWrite(window, rec, today); reason != "" {
			result.Errors = append(result.Errors, rejected(rec, errors.BusinessRuleViolation(reason)))
			continue
		}

		accepted = append(accepted, rec)
	}

	if len(accepted) > 0 {
		err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
			for i, rec := range accepted {
				item, err := s.upsertOne(ctx, tx, i, rec)
				if err != nil {
					return err
				}
				if item.Status == "success" {
					result.Results = append(result.Results, item)
				} else {
					result.Errors = append(result.Errors, item)
				}
			}
			return nil
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("batch save transaction failed")
			return nil, errors.Internal("failed to save time records")
		}
	}

	result.Success = len(result.Errors) == 0

	saved, rejectedCount := len(result.Results), len(result.Errors)
	if saved > 0 && len(records) > 0 {
		first := records[0]
		s.publisher.PublishTimesheetSaved(ctx, first.Year, first.Month, saved, rejectedCount)
	}

	return result, nil
}

// upsertOne writes a single accepted record inside the batch transaction,
// guarded by a savepoint. A constraint violation aborts only the savepoint,
// not the enclosing transaction, so the other items still commit and the
// violation becomes a per-item error. Any other failure aborts the batch.
func (s *TimesheetService) upsertOne(ctx context.Context, tx *sqlx.Tx, n int, rec rules.RecordInput) (BatchItem, error) {
	savepoint := fmt.Sprintf("item_%d", n)
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
		return BatchItem{}, err
	}

	row := &repository.TimeRecord{
		EmployeeID: rec.EmployeeID,
		Year:       rec.Year,
		Month:      rec.Month,
		Day:        rec.Day,
		Hours:      *rec.Hours,
	}

	if err := s.recordRepo.UpsertTx(ctx, tx, row); err != nil {
		appErr := database.MapPQError(err)
		if appErr == nil {
			return BatchItem{}, err
		}
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
			return BatchItem{}, rbErr
		}
		return rejected(rec, errors.InvalidParameters(constraintMessage(appErr))), nil
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
		return BatchItem{}, err
	}

	return BatchItem{
		EmployeeID: rec.EmployeeID,
		Year:       rec.Year,
		Month:      rec.Month,
		Day:        rec.Day,
		Hours:      rec.Hours,
		Status:     "success",
	}, nil
}

// classifyWrite re-runs the cell rules on the server before persisting.
// It returns a non-empty reason message when the target cell is not editable.
func (s *TimesheetService) classifyWrite(window *rules.EmploymentWindow, rec rules.RecordInput, today time.Time) string {
	if rec.Day > calendar.DaysInMonth(rec.Year, rec.Month) {
		return "day does not exist in this month"
	}

	cell := rules.Classify(*window, calendar.DateOf(rec.Year, rec.Month, rec.Day), today, rules.ModeEdit)
	if cell.Editable {
		return ""
	}

	switch cell.Status {
	case rules.StatusWeekend:
		return "cannot record hours on a weekend"
	case rules.StatusFuture:
		return "cannot record hours for a future date"
	case rules.StatusBeforeEmployment:
		return "date is before the employee's start date"
	case rules.StatusAfterTermination:
		return "date is after the employee's end date"
	default:
		return "day is not editable"
	}
}

// employmentWindow resolves and caches an employee's employment window for
// the duration of one batch.
func (s *TimesheetService) employmentWindow(ctx context.Context, cache map[int64]*rules.EmploymentWindow, employeeID int64) (*rules.EmploymentWindow, error) {
	if window, ok := cache[employeeID]; ok {
		return window, nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	window := emp.Window()
	cache[employeeID] = &window
	return &window, nil
}

func rejected(rec rules.RecordInput, appErr *errors.AppError) BatchItem {
	return BatchItem{
		EmployeeID: rec.EmployeeID,
		Year:       rec.Year,
		Month:      rec.Month,
		Day:        rec.Day,
		Hours:      rec.Hours,
		Status:     "error",
		Reason:     reasonOf(appErr),
		Message:    appErr.Message,
	}
}

// reasonOf maps the error kind to the wire-level reason string.
func reasonOf(appErr *errors.AppError) string {
	switch {
	case errors.Is(appErr, errors.ErrInvalidParameters):
		return ReasonInvalidParameters
	case errors.Is(appErr, errors.ErrBusinessRuleViolation):
		return ReasonBusinessRule
	case errors.Is(appErr, errors.ErrNotFound):
		return ReasonNotFound
	default:
		return ReasonInternal
	}
}

// constraintMessage flattens a mapped constraint violation into a single
// per-item message ("hours must be between 0 and 12").
func constraintMessage(appErr *errors.AppError) string {
	for field, detail := range appErr.Details {
		return field + " " + detail
	}
	return appErr.Message
}
