package rules

import "fmt"

// RecordInput is one candidate write in a batch save.
type RecordInput struct {
	EmployeeID int64    `json:"employeeId"`
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	Day        int      `json:"day"`
	Hours      *float64 `json:"hours"`
}

// Structural bounds for a candidate write. The hours value range [0, 12] is
// the persistence layer's CHECK constraint and is not re-checked here.
const (
	MinYear = 2000
	MaxYear = 2100
)

// ValidateRecord checks the structural validity of a single candidate write.
// It returns a human-readable reason when the record is malformed, matching
// the invalid_parameters error kind. Each item is validated independently;
// a failure never aborts the rest of the batch.
func ValidateRecord(rec RecordInput) error {
	switch {
	case rec.EmployeeID <= 0:
		return fmt.Errorf("employeeId must be positive, got %d", rec.EmployeeID)
	case rec.Year < MinYear || rec.Year > MaxYear:
		return fmt.Errorf("year must be in [%d, %d], got %d", MinYear, MaxYear, rec.Year)
	case rec.Month < 0 || rec.Month > 11:
		return fmt.Errorf("month must be in [0, 11], got %d", rec.Month)
	case rec.Day < 1 || rec.Day > 31:
		return fmt.Errorf("day must be in [1, 31], got %d", rec.Day)
	case rec.Hours == nil:
		return fmt.Errorf("hours is required")
	default:
		return nil
	}
}
