package service

import (
	"context"
	"sort"
	"time"

	"github.com/timegrid/timegrid-backend/internal/timesheet/calendar"
	"github.com/timegrid/timegrid-backend/internal/timesheet/events"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/internal/timesheet/rules"
	"github.com/timegrid/timegrid-backend/pkg/database"
	"github.com/timegrid/timegrid-backend/pkg/logger"
)

// TimesheetService serves the month grid, the monthly summary, and the
// batch save path. It is the single consumer of the validity rules, so the
// grid, the summary, and the write path can never disagree on a cell.
type TimesheetService struct {
	employeeRepo *repository.EmployeeRepository
	recordRepo   *repository.TimeRecordRepository
	db           *database.DB
	publisher    *events.TimesheetEventPublisher
	logger       *logger.Logger
	now          func() time.Time
}

// Option configures a TimesheetService
type Option func(*TimesheetService)

// WithClock overrides the wall clock. Tests inject a fixed "today" so the
// future-date rule is deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *TimesheetService) {
		s.now = now
	}
}

// NewTimesheetService creates a new timesheet service
func NewTimesheetService(
	employeeRepo *repository.EmployeeRepository,
	recordRepo *repository.TimeRecordRepository,
	db *database.DB,
	publisher *events.TimesheetEventPublisher,
	log *logger.Logger,
	opts ...Option,
) *TimesheetService {
	s := &TimesheetService{
		employeeRepo: employeeRepo,
		recordRepo:   recordRepo,
		db:           db,
		publisher:    publisher,
		logger:       log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EmployeeMonth is one row of the month grid: an employee, the raw recorded
// days (stray records on non-countable days included, they render read-only),
// and the aggregate over countable cells only.
type EmployeeMonth struct {
	EmployeeID   int64                 `json:"employeeId"`
	EmployeeName string                `json:"employeeName"`
	StartDate    time.Time             `json:"startDate"`
	EndDate      *time.Time            `json:"endDate"`
	TotalHours   float64               `json:"totalHours"`
	WorkingDays  int                   `json:"workingDays"`
	TimeRecords  []repository.DayHours `json:"timeRecords"`
}

// SummaryRow is one row of the monthly summary.
type SummaryRow struct {
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	WorkingDays  int     `json:"working_days"`
	TotalHours   float64 `json:"total_hours"`
}

// MonthGrid resolves the roster for a zero-based month and mode, classifies
// every employee's recorded days, and aggregates the countable ones.
// Display mode keeps only employees with at least one countable record;
// edit mode keeps every employee whose window overlaps the month.
func (s *TimesheetService) MonthGrid(ctx context.Context, year, month int, mode rules.Mode) ([]EmployeeMonth, error) {
	roster, recorded, err := s.loadMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	today := s.now()
	result := make([]EmployeeMonth, 0, len(roster))

	for _, emp := range roster {
		days := recorded[emp.ID]
		totals := rules.MonthTotals(emp.Window(), year, month, today, days)

		if mode == rules.ModeDisplay && totals.WorkingDays == 0 {
			continue
		}

		result = append(result, EmployeeMonth{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			StartDate:    emp.StartDate,
			EndDate:      emp.EndDate,
			TotalHours:   totals.TotalHours,
			WorkingDays:  totals.WorkingDays,
			TimeRecords:  sortedDayHours(days),
		})
	}

	return result, nil
}

// MonthRecords returns the raw records of a month joined with employee names.
func (s *TimesheetService) MonthRecords(ctx context.Context, year, month int) ([]repository.MonthRecord, error) {
	return s.recordRepo.ListForMonth(ctx, year, month)
}

// MonthlySummary returns one row per employee with countable hours in the
// month. Grand totals and averages are the consumer's reduction over these
// rows.
func (s *TimesheetService) MonthlySummary(ctx context.Context, year, month int) ([]SummaryRow, error) {
	roster, recorded, err := s.loadMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	today := s.now()
	summary := make([]SummaryRow, 0, len(roster))

	for _, emp := range roster {
		totals := rules.MonthTotals(emp.Window(), year, month, today, recorded[emp.ID])
		if totals.WorkingDays == 0 {
			continue
		}

		summary = append(summary, SummaryRow{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			WorkingDays:  totals.WorkingDays,
			TotalHours:   totals.TotalHours,
		})
	}

	return summary, nil
}

// loadMonth fetches the overlap roster and the month's recorded hours.
func (s *TimesheetService) loadMonth(ctx context.Context, year, month int) ([]*repository.Employee, map[int64]map[int]float64, error) {
	first := calendar.FirstOfMonth(year, month)
	last := calendar.LastOfMonth(year, month)

	roster, err := s.employeeRepo.ListActiveInMonth(ctx, first, last)
	if err != nil {
		return nil, nil, err
	}

	recorded, err := s.recordRepo.MonthHoursByEmployee(ctx, year, month)
	if err != nil {
		return nil, nil, err
	}

	return roster, recorded, nil
}

func sortedDayHours(days map[int]float64) []repository.DayHours {
	out := make([]repository.DayHours, 0, len(days))
	for day, hours := range days {
		out = append(out, repository.DayHours{Day: day, Hours: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
