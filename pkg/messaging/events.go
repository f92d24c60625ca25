package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventEmployeeCreated = "timesheet.employee.created"
	EventEmployeeUpdated = "timesheet.employee.updated"
	EventEmployeeDeleted = "timesheet.employee.deleted"

	EventTimesheetSaved = "timesheet.records.saved"
)

// Exchange names
const (
	ExchangeTimesheetEvents = "timesheet.events"
)

// Event is the base event structure
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// EmployeeCreatedEvent is published when an employee is created
type EmployeeCreatedEvent struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StartDate  string `json:"start_date"`
}

// EmployeeUpdatedEvent is published when an employee is updated
type EmployeeUpdatedEvent struct {
	EmployeeID int64          `json:"employee_id"`
	Fields     map[string]any `json:"fields"`
}

// EmployeeDeletedEvent is published when an employee is deleted
type EmployeeDeletedEvent struct {
	EmployeeID int64 `json:"employee_id"`
}

// TimesheetSavedEvent is published after a batch save completes
type TimesheetSavedEvent struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	Saved    int `json:"saved"`
	Rejected int `json:"rejected"`
}
