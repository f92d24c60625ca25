package events

import (
	"context"

	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/pkg/logger"
	"github.com/timegrid/timegrid-backend/pkg/messaging"
)

// TimesheetEventPublisher publishes timesheet-related events. A nil publisher
// is valid and publishes nothing, so the service can run without a broker.
type TimesheetEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewTimesheetEventPublisher creates a new timesheet event publisher
func NewTimesheetEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TimesheetEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeTimesheetEvents, "timegrid-service", log)
	if err != nil {
		return nil, err
	}

	return &TimesheetEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishEmployeeCreated publishes an employee created event
func (p *TimesheetEventPublisher) PublishEmployeeCreated(ctx context.Context, emp *repository.Employee) {
	if p == nil {
		return
	}

	data := messaging.EmployeeCreatedEvent{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		StartDate:  emp.StartDate.Format("2006-01-02"),
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeCreated, data); err != nil {
		p.logger.Error().Err(err).Int64("employee_id", emp.ID).Msg("failed to publish employee created event")
	}
}

// PublishEmployeeUpdated publishes an employee updated event
func (p *TimesheetEventPublisher) PublishEmployeeUpdated(ctx context.Context, emp *repository.Employee) {
	if p == nil {
		return
	}

	data := messaging.EmployeeUpdatedEvent{
		EmployeeID: emp.ID,
		Fields:     map[string]any{"name": emp.Name, "email": emp.Email},
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeUpdated, data); err != nil {
		p.logger.Error().Err(err).Int64("employee_id", emp.ID).Msg("failed to publish employee updated event")
	}
}

// PublishEmployeeDeleted publishes an employee deleted event
func (p *TimesheetEventPublisher) PublishEmployeeDeleted(ctx context.Context, employeeID int64) {
	if p == nil {
		return
	}

	data := messaging.EmployeeDeletedEvent{
		EmployeeID: employeeID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeDeleted, data); err != nil {
		p.logger.Error().Err(err).Int64("employee_id", employeeID).Msg("failed to publish employee deleted event")
	}
}

// PublishTimesheetSaved publishes a batch save completion event
func (p *TimesheetEventPublisher) PublishTimesheetSaved(ctx context.Context, year, month, saved, rejected int) {
	if p == nil {
		return
	}

	data := messaging.TimesheetSavedEvent{
		Year:     year,
		Month:    month,
		Saved:    saved,
		Rejected: rejected,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTimesheetSaved, data); err != nil {
		p.logger.Error().Err(err).Int("year", year).Int("month", month).Msg("failed to publish timesheet saved event")
	}
}
