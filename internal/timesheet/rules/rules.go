// Package rules implements the employment-window validity engine and the
// monthly aggregation that depends on it. Both read the same per-cell
// classification, so a grid cell can never be editable yet uncounted, or
// counted yet illegal.
package rules

import (
	"time"

	"github.com/timegrid/timegrid-backend/internal/timesheet/calendar"
)

// Mode is the client-selected view state. Display mode narrows the roster to
// employees with recorded hours and makes every cell read-only; edit mode
// widens it to every employee active in the month.
type Mode string

const (
	ModeDisplay Mode = "display"
	ModeEdit    Mode = "edit"
)

// ParseMode validates a mode string from the URL.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeDisplay, ModeEdit:
		return Mode(s), true
	default:
		return "", false
	}
}

// CellStatus classifies a single (employee, day) grid cell.
type CellStatus string

const (
	StatusWeekend           CellStatus = "weekend"
	StatusFuture            CellStatus = "future"
	StatusBeforeEmployment  CellStatus = "before_employment"
	StatusAfterTermination  CellStatus = "after_termination"
	StatusOK                CellStatus = "ok"
)

// EmploymentWindow is the inclusive [Start, End] date range during which an
// employee's hours may be recorded. A nil End means still employed.
type EmploymentWindow struct {
	Start time.Time
	End   *time.Time
}

// Contains reports whether the given day falls inside the window, boundaries
// inclusive.
func (w EmploymentWindow) Contains(date time.Time) bool {
	d := calendar.Midnight(date)
	if d.Before(calendar.Midnight(w.Start)) {
		return false
	}
	if w.End != nil && d.After(calendar.Midnight(*w.End)) {
		return false
	}
	return true
}

// OverlapsMonth reports whether the window touches any day of the given
// zero-based month. This is the edit-mode roster predicate.
func (w EmploymentWindow) OverlapsMonth(year, month int) bool {
	first := calendar.FirstOfMonth(year, month)
	last := calendar.LastOfMonth(year, month)
	if calendar.Midnight(w.Start).After(last) {
		return false
	}
	if w.End != nil && calendar.Midnight(*w.End).Before(first) {
		return false
	}
	return true
}

// Cell is the classification of one (employee, day) pair.
type Cell struct {
	Status    CellStatus
	Editable  bool
	Countable bool
}

// Classify decides what may happen to a single day cell. The checks run in a
// fixed precedence order and the first match wins:
//
//	weekend > future > before_employment > after_termination > ok
//
// Editable is true only for ok cells in edit mode. Countable is true only for
// ok cells; the aggregation additionally requires a recorded hours value.
// "today" is an explicit parameter so callers inject the clock.
func Classify(w EmploymentWindow, date, today time.Time, mode Mode) Cell {
	d := calendar.Midnight(date)

	switch {
	case calendar.IsWeekendDate(d):
		return Cell{Status: StatusWeekend}
	case d.After(calendar.Midnight(today)):
		return Cell{Status: StatusFuture}
	case d.Before(calendar.Midnight(w.Start)):
		return Cell{Status: StatusBeforeEmployment}
	case w.End != nil && d.After(calendar.Midnight(*w.End)):
		return Cell{Status: StatusAfterTermination}
	default:
		return Cell{
			Status:    StatusOK,
			Editable:  mode == ModeEdit,
			Countable: true,
		}
	}
}
