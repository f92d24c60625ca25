package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid-backend/internal/timesheet/handler"
	"github.com/timegrid/timegrid-backend/internal/timesheet/repository"
	"github.com/timegrid/timegrid-backend/internal/timesheet/service"
	"github.com/timegrid/timegrid-backend/pkg/logger"
	"github.com/timegrid/timegrid-backend/pkg/testutil"
)

var testToday = time.Date(2024, time.June, 20, 14, 30, 0, 0, time.Local)

func newTimesheetRouter(t *testing.T) (*chi.Mux, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")

	svc := service.NewTimesheetService(
		repository.NewEmployeeRepository(mockDB.DB),
		repository.NewTimeRecordRepository(mockDB.DB),
		mockDB.DB,
		nil,
		log,
		service.WithClock(func() time.Time { return testToday }),
	)
	h := handler.NewTimesheetHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/v1/timesheet", func(r chi.Router) {
		r.Route("/time-tracking", func(r chi.Router) {
			r.Post("/", h.SaveBatch)
			r.Get("/summary/{year}/{month}", h.GetMonthlySummary)
			r.Get("/{year}/{month}", h.GetMonthRecords)
			r.Get("/{year}/{month}/mode/{mode}", h.GetMonthGrid)
		})
	})

	return r, mockDB
}

func employeeRows(mockDB *testutil.MockDB, start time.Time) {
	mockDB.Mock.ExpectQuery("FROM employees").WillReturnRows(
		testutil.MockRows("id", "name", "email", "start_date", "end_date", "created_at", "updated_at").
			AddRow(1, "Alice", "alice@example.com", start, nil, start, start))
}

func upsertRows(mockDB *testutil.MockDB, n int, id int64) {
	mockDB.ExpectExec(fmt.Sprintf("SAVEPOINT item_%d", n)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery("INSERT INTO time_records").WillReturnRows(
		testutil.MockRows("id").AddRow(id))
	mockDB.ExpectExec(fmt.Sprintf("RELEASE SAVEPOINT item_%d", n)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestGetMonthGrid(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	employeeRows(mockDB, start)
	mockDB.Mock.ExpectQuery("SELECT employee_id, day, hours").WillReturnRows(
		testutil.MockRows("employee_id", "day", "hours").AddRow(1, 3, 8.0))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timesheet/time-tracking/2024/5/mode/edit", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Data    []service.EmployeeMonth `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Alice", resp.Data[0].EmployeeName)
	assert.Equal(t, 8.0, resp.Data[0].TotalHours)

	mockDB.ExpectationsWereMet(t)
}

func TestGetMonthGrid_InvalidMode(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timesheet/time-tracking/2024/5/mode/both", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "display")
}

func TestGetMonthGrid_InvalidMonth(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	for _, path := range []string{
		"/api/v1/timesheet/time-tracking/2024/12/mode/edit",
		"/api/v1/timesheet/time-tracking/2024/-1/mode/edit",
		"/api/v1/timesheet/time-tracking/1999/5/mode/edit",
		"/api/v1/timesheet/time-tracking/banana/5/mode/edit",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetMonthlySummary(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	employeeRows(mockDB, start)
	mockDB.Mock.ExpectQuery("SELECT employee_id, day, hours").WillReturnRows(
		testutil.MockRows("employee_id", "day", "hours").
			AddRow(1, 3, 8.0).
			AddRow(1, 4, 6.0))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timesheet/time-tracking/summary/2024/5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []service.SummaryRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Data[0].WorkingDays)
	assert.Equal(t, 14.0, resp.Data[0].TotalHours)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_AllSaved(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	employeeRows(mockDB, start)
	mockDB.ExpectBegin()
	upsertRows(mockDB, 0, 10)
	mockDB.ExpectCommit()

	body := `[{"employeeId":1,"year":2024,"month":5,"day":3,"hours":8}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheet/time-tracking", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result service.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Len(t, result.Results, 1)
	assert.Empty(t, result.Errors)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_PartialFailureReturnsMultiStatus(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	employeeRows(mockDB, start)
	mockDB.ExpectBegin()
	upsertRows(mockDB, 0, 10)
	upsertRows(mockDB, 1, 11)
	mockDB.ExpectCommit()

	body := `[
		{"employeeId":1,"year":2024,"month":5,"day":3,"hours":8},
		{"employeeId":1,"year":2024,"month":5,"day":0,"hours":8},
		{"employeeId":1,"year":2024,"month":5,"day":4,"hours":6}
	]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheet/time-tracking", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var result service.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Len(t, result.Results, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "invalid_parameters", result.Errors[0].Reason)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_NonArrayBody(t *testing.T) {
	r, mockDB := newTimesheetRouter(t)
	defer mockDB.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheet/time-tracking", bytes.NewBufferString(`{"employeeId":1}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "JSON array")
}
