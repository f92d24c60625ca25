package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hoursPtr(h float64) *float64 {
	return &h
}

func TestValidateRecord(t *testing.T) {
	valid := RecordInput{EmployeeID: 1, Year: 2024, Month: 5, Day: 14, Hours: hoursPtr(8)}

	tests := []struct {
		name    string
		mutate  func(r *RecordInput)
		wantErr bool
	}{
		{"valid record", func(r *RecordInput) {}, false},
		{"zero hours is valid", func(r *RecordInput) { r.Hours = hoursPtr(0) }, false},
		{"year at lower bound", func(r *RecordInput) { r.Year = 2000 }, false},
		{"year at upper bound", func(r *RecordInput) { r.Year = 2100 }, false},
		{"zero employee id", func(r *RecordInput) { r.EmployeeID = 0 }, true},
		{"negative employee id", func(r *RecordInput) { r.EmployeeID = -7 }, true},
		{"year too early", func(r *RecordInput) { r.Year = 1999 }, true},
		{"year too late", func(r *RecordInput) { r.Year = 2101 }, true},
		{"negative month", func(r *RecordInput) { r.Month = -1 }, true},
		{"month past november", func(r *RecordInput) { r.Month = 12 }, true},
		{"day zero", func(r *RecordInput) { r.Day = 0 }, true},
		{"day past 31", func(r *RecordInput) { r.Day = 32 }, true},
		{"missing hours", func(r *RecordInput) { r.Hours = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			err := ValidateRecord(rec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
