package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timegrid/timegrid-backend/internal/timesheet/rules"
	"github.com/timegrid/timegrid-backend/pkg/testutil"
)

func hoursPtr(h float64) *float64 { return &h }

func expectEmployee(mockDB *testutil.MockDB, id int64, start time.Time, end *time.Time) {
	mockDB.Mock.ExpectQuery("FROM employees").WillReturnRows(
		testutil.MockRows(employeeColumns()...).
			AddRow(id, "Alice", "alice@example.com", start, end, start, start))
}

func expectUpsert(mockDB *testutil.MockDB, n int, id int64) {
	expectSavepoint(mockDB, n)
	mockDB.Mock.ExpectQuery("INSERT INTO time_records").WillReturnRows(
		testutil.MockRows("id").AddRow(id))
	mockDB.ExpectExec(fmt.Sprintf("RELEASE SAVEPOINT item_%d", n)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectSavepoint(mockDB *testutil.MockDB, n int) {
	mockDB.Mock.ExpectExec(fmt.Sprintf("^SAVEPOINT item_%d$", n)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestSaveBatch_AllValid(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	expectEmployee(mockDB, 1, start, nil)
	mockDB.ExpectBegin()
	expectUpsert(mockDB, 0, 10)
	expectUpsert(mockDB, 1, 11)
	mockDB.ExpectCommit()

	// June 3 and 4, 2024 are Monday and Tuesday.
	result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 4, Hours: hoursPtr(7.5)},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Results, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "success", result.Results[0].Status)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_PartialFailureStillPersistsValidRecords(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	expectEmployee(mockDB, 1, start, nil)
	mockDB.ExpectBegin()
	expectUpsert(mockDB, 0, 10)
	expectUpsert(mockDB, 1, 11)
	mockDB.ExpectCommit()

	result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 0, Hours: hoursPtr(8)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 4, Hours: hoursPtr(6)},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Len(t, result.Results, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ReasonInvalidParameters, result.Errors[0].Reason)
	assert.Equal(t, 0, result.Errors[0].Day)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_ConstraintViolationDoesNotAbortBatch(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	expectEmployee(mockDB, 1, start, nil)
	mockDB.ExpectBegin()
	expectUpsert(mockDB, 0, 10)
	// The second upsert trips the hours CHECK constraint. Only its savepoint
	// is rolled back; the surrounding transaction still commits.
	expectSavepoint(mockDB, 1)
	mockDB.Mock.ExpectQuery("INSERT INTO time_records").WillReturnError(&pq.Error{
		Code:       "23514",
		Constraint: "time_records_hours_range",
	})
	mockDB.ExpectExec("ROLLBACK TO SAVEPOINT item_1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectUpsert(mockDB, 2, 11)
	mockDB.ExpectCommit()

	result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 4, Hours: hoursPtr(13)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 14, Hours: hoursPtr(6)},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Len(t, result.Results, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Day)
	assert.Equal(t, ReasonInvalidParameters, result.Errors[0].Reason)
	assert.Equal(t, "hours must be between 0 and 12", result.Errors[0].Message)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_StructuralValidation(t *testing.T) {
	tests := []struct {
		name    string
		record  rules.RecordInput
		message string
	}{
		{
			name:    "missing hours",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 3},
			message: "hours is required",
		},
		{
			name:    "month out of range",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 12, Day: 3, Hours: hoursPtr(8)},
			message: "month must be in [0, 11], got 12",
		},
		{
			name:    "non-positive employee id",
			record:  rules.RecordInput{EmployeeID: 0, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
			message: "employeeId must be positive, got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockDB := newTestService(t)
			defer mockDB.Close()

			result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{tt.record})
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Empty(t, result.Results)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, ReasonInvalidParameters, result.Errors[0].Reason)
			assert.Equal(t, tt.message, result.Errors[0].Message)

			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestSaveBatch_UnknownEmployee(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery("FROM employees").WillReturnError(sql.ErrNoRows)

	result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{
		{EmployeeID: 99, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ReasonNotFound, result.Errors[0].Reason)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_RejectsNonEditableCells(t *testing.T) {
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.June, 14, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		record  rules.RecordInput
		end     *time.Time
		message string
	}{
		{
			name:    "weekend",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 1, Hours: hoursPtr(8)},
			message: "cannot record hours on a weekend",
		},
		{
			name:    "future date",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 24, Hours: hoursPtr(8)},
			message: "cannot record hours for a future date",
		},
		{
			name:    "before start date",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 2, Day: 8, Hours: hoursPtr(8)},
			message: "date is before the employee's start date",
		},
		{
			name:    "after end date",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 17, Hours: hoursPtr(8)},
			end:     &end,
			message: "date is after the employee's end date",
		},
		{
			name:    "day beyond month length",
			record:  rules.RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 31, Hours: hoursPtr(8)},
			message: "day does not exist in this month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockDB := newTestService(t)
			defer mockDB.Close()

			expectEmployee(mockDB, 1, start, tt.end)

			result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{tt.record})
			require.NoError(t, err)

			assert.False(t, result.Success)
			assert.Empty(t, result.Results)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, ReasonBusinessRule, result.Errors[0].Reason)
			assert.Equal(t, tt.message, result.Errors[0].Message)

			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestSaveBatch_CachesEmployeeLookups(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	// One roster lookup serves both records.
	expectEmployee(mockDB, 1, start, nil)
	mockDB.ExpectBegin()
	expectUpsert(mockDB, 0, 10)
	expectUpsert(mockDB, 1, 11)
	mockDB.ExpectCommit()

	result, err := svc.SaveBatch(context.Background(), []rules.RecordInput{
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 3, Hours: hoursPtr(8)},
		{EmployeeID: 1, Year: 2024, Month: 5, Day: 4, Hours: hoursPtr(8)},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	mockDB.ExpectationsWereMet(t)
}

func TestSaveBatch_EmptyBatch(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	result, err := svc.SaveBatch(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Errors)

	mockDB.ExpectationsWereMet(t)
}
