package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/timegrid/timegrid-backend/internal/timesheet/rules"
	"github.com/timegrid/timegrid-backend/internal/timesheet/service"
	"github.com/timegrid/timegrid-backend/pkg/errors"
	"github.com/timegrid/timegrid-backend/pkg/httputil"
	"github.com/timegrid/timegrid-backend/pkg/logger"
)

// TimesheetHandler handles the month grid, summary, and batch save endpoints
type TimesheetHandler struct {
	service *service.TimesheetService
	logger  *logger.Logger
}

// NewTimesheetHandler creates a new timesheet handler
func NewTimesheetHandler(svc *service.TimesheetService, log *logger.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		service: svc,
		logger:  log,
	}
}

// GetMonthGrid returns the per-employee month grid for the given mode
// GET /time-tracking/{year}/{month}/mode/{mode}
func (h *TimesheetHandler) GetMonthGrid(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	mode, ok := rules.ParseMode(chi.URLParam(r, "mode"))
	if !ok {
		httputil.Error(w, errors.BadRequest("mode must be 'display' or 'edit'"))
		return
	}

	grid, err := h.service.MonthGrid(r.Context(), year, month, mode)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, grid)
}

// GetMonthRecords returns the raw records of a month
// GET /time-tracking/{year}/{month}
func (h *TimesheetHandler) GetMonthRecords(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	records, err := h.service.MonthRecords(r.Context(), year, month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}

// GetMonthlySummary returns per-employee aggregates for a month
// GET /time-tracking/summary/{year}/{month}
func (h *TimesheetHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.MonthlySummary(r.Context(), year, month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// SaveBatch validates and persists a batch of time records. Every submitted
// record is answered individually; the response is 200 when all records were
// saved and 207 Multi-Status when some were rejected.
// POST /time-tracking
func (h *TimesheetHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var records []rules.RecordInput
	if err := httputil.DecodeJSON(r, &records); err != nil {
		httputil.Error(w, errors.BadRequest("request body must be a JSON array of time records"))
		return
	}

	result, err := h.service.SaveBatch(r.Context(), records)
	if err != nil {
		h.logger.Error().Err(err).Msg("batch save failed")
		httputil.Error(w, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}

	httputil.Raw(w, status, result)
}

// yearMonth parses the {year}/{month} URL segments. The month is zero-based.
func yearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < rules.MinYear || year > rules.MaxYear {
		return 0, 0, errors.BadRequest("year must be a number between 2000 and 2100")
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 0 || month > 11 {
		return 0, 0, errors.BadRequest("month must be a number between 0 and 11")
	}

	return year, month, nil
}
