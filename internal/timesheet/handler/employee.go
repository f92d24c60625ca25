package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/internal/timesheet/service"
	"github.com/timegrid/timegrid-backend/pkg/errors"
	"github.com/timegrid/timegrid-backend/pkg/httputil"
	"github.com/timegrid/timegrid-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// EmployeeHandler handles employee endpoints
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: svc,
		logger:  log,
	}
}

// CreateEmployeeRequest is the request structure for creating an employee
type CreateEmployeeRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateEmployeeRequest is the request structure for a partial employee
// update. EndDate is a raw message so an explicit null (clear the
// termination date) stays distinguishable from an omitted field.
type UpdateEmployeeRequest struct {
	Name      *string         `json:"name" validate:"omitempty,min=1"`
	Email     *string         `json:"email" validate:"omitempty,email"`
	StartDate *string         `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   json.RawMessage `json:"endDate"`
}

// List lists all employees
// GET /employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// Get gets an employee by ID
// GET /employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	employee, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employee)
}

// Create creates a new employee
// POST /employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	startDate, _ := time.ParseInLocation(dateLayout, req.StartDate, time.Local)

	var endDate *time.Time
	if req.EndDate != nil {
		d, _ := time.ParseInLocation(dateLayout, *req.EndDate, time.Local)
		endDate = &d
	}

	employee := &repository.Employee{
		Name:      req.Name,
		Email:     req.Email,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if err := h.service.Create(r.Context(), employee); err != nil {
		h.logger.Error().Err(err).Msg("failed to create employee")
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, employee)
}

// Update applies a partial update to an employee
// PUT /employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req UpdateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	update := service.EmployeeUpdate{
		Name:  req.Name,
		Email: req.Email,
	}

	if req.StartDate != nil {
		d, _ := time.ParseInLocation(dateLayout, *req.StartDate, time.Local)
		update.StartDate = &d
	}

	if len(req.EndDate) > 0 {
		if bytes.Equal(req.EndDate, []byte("null")) {
			update.ClearEndDate = true
		} else {
			var s string
			if err := json.Unmarshal(req.EndDate, &s); err != nil {
				httputil.Error(w, errors.BadRequest("endDate must be a date string or null"))
				return
			}
			d, err := time.ParseInLocation(dateLayout, s, time.Local)
			if err != nil {
				httputil.Error(w, errors.Validation(map[string]string{
					"endDate": "must be a date in the format " + dateLayout,
				}))
				return
			}
			update.EndDate = &d
		}
	}

	employee, err := h.service.Update(r.Context(), id, update)
	if err != nil {
		h.logger.Error().Err(err).Int64("employee_id", id).Msg("failed to update employee")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employee)
}

// Delete deletes an employee and its time records
// DELETE /employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := employeeID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

func employeeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid employee id")
	}
	return id, nil
}
