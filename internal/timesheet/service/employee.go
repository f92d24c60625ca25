package service

import (
	"context"
	"time"

	"github.com/timegrid/timegrid-backend/internal/timesheet/events"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/pkg/errors"
	"github.com/timegrid/timegrid-backend/pkg/logger"
)

// EmployeeService handles employee business logic
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	publisher    *events.TimesheetEventPublisher
	logger       *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employeeRepo *repository.EmployeeRepository,
	publisher *events.TimesheetEventPublisher,
	log *logger.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// EmployeeUpdate carries a partial employee update. Nil fields are left
// unchanged. EndDate is the exception: ClearEndDate removes a termination
// date, so "omitted" and "explicitly absent" stay distinguishable.
type EmployeeUpdate struct {
	Name         *string
	Email        *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
}

// Create creates a new employee
func (s *EmployeeService) Create(ctx context.Context, emp *repository.Employee) error {
	if err := validateWindow(emp.StartDate, emp.EndDate); err != nil {
		return err
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return err
	}

	s.publisher.PublishEmployeeCreated(ctx, emp)

	return nil
}

// GetByID gets an employee by ID
func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*repository.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// List lists all employees
func (s *EmployeeService) List(ctx context.Context) ([]*repository.Employee, error) {
	return s.employeeRepo.List(ctx)
}

// Update applies a partial update to an employee
func (s *EmployeeService) Update(ctx context.Context, id int64, update EmployeeUpdate) (*repository.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		emp.Name = *update.Name
	}
	if update.Email != nil {
		emp.Email = *update.Email
	}
	if update.StartDate != nil {
		emp.StartDate = *update.StartDate
	}
	if update.ClearEndDate {
		emp.EndDate = nil
	} else if update.EndDate != nil {
		emp.EndDate = update.EndDate
	}

	if err := validateWindow(emp.StartDate, emp.EndDate); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	s.publisher.PublishEmployeeUpdated(ctx, emp)

	return emp, nil
}

// Delete deletes an employee and, through the schema, its time records
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishEmployeeDeleted(ctx, id)

	return nil
}

// validateWindow rejects an employment window that ends before it starts.
func validateWindow(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return errors.Validation(map[string]string{
			"endDate": "must not be before startDate",
		})
	}
	return nil
}
