package rules

import (
	"time"

	"github.com/timegrid/timegrid-backend/internal/timesheet/calendar"
)

// Totals is the per-employee monthly aggregate. WorkingDays counts days with
// a recorded entry on a countable cell; a day explicitly recorded as 0 hours
// still counts as a working day, which is what distinguishes "no record" from
// "recorded 0".
type Totals struct {
	TotalHours  float64
	WorkingDays int
}

// MonthTotals aggregates an employee's recorded hours for a zero-based month.
// recorded maps day-of-month to hours. Only cells classified ok contribute;
// stray records on weekends, future days, or days outside the employment
// window are excluded even though they may still be displayed.
func MonthTotals(w EmploymentWindow, year, month int, today time.Time, recorded map[int]float64) Totals {
	var totals Totals
	for day := 1; day <= calendar.DaysInMonth(year, month); day++ {
		hours, ok := recorded[day]
		if !ok {
			continue
		}
		cell := Classify(w, calendar.DateOf(year, month, day), today, ModeDisplay)
		if !cell.Countable {
			continue
		}
		totals.TotalHours += hours
		totals.WorkingDays++
	}
	return totals
}

// Average returns total hours divided by working days, and false when there
// are no working days (the consumer renders a placeholder in that case).
func (t Totals) Average() (float64, bool) {
	if t.WorkingDays == 0 {
		return 0, false
	}
	return t.TotalHours / float64(t.WorkingDays), true
}
