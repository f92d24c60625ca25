// Package calendar provides the date arithmetic the month grid is built on.
// Months are zero-based (January = 0) throughout the application, matching
// the wire format and the time_records schema.
package calendar

import "time"

// MonthDay is one day of a month grid
type MonthDay struct {
	Day     int  `json:"day"`
	Weekend bool `json:"isWeekend"`
}

// DaysInMonth returns the number of days in the given zero-based month,
// accounting for leap years.
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.Local).Day()
}

// IsWeekend reports whether the given day falls on a Saturday or Sunday.
func IsWeekend(year, month, day int) bool {
	return IsWeekendDate(DateOf(year, month, day))
}

// IsWeekendDate is the time.Time form of IsWeekend.
func IsWeekendDate(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// EnumerateMonth returns every day of the month in ascending order with its
// weekend classification.
func EnumerateMonth(year, month int) []MonthDay {
	n := DaysInMonth(year, month)
	days := make([]MonthDay, 0, n)
	for day := 1; day <= n; day++ {
		days = append(days, MonthDay{Day: day, Weekend: IsWeekend(year, month, day)})
	}
	return days
}

// DateOf returns the local-midnight time for a grid cell.
func DateOf(year, month, day int) time.Time {
	return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.Local)
}

// Midnight zeroes out the time-of-day component. Date comparisons in the
// validity rules always happen at local midnight, so a record dated today
// is never classified as future.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FirstOfMonth returns the first day of the given zero-based month.
func FirstOfMonth(year, month int) time.Time {
	return DateOf(year, month, 1)
}

// LastOfMonth returns the last day of the given zero-based month.
func LastOfMonth(year, month int) time.Time {
	return DateOf(year, month, DaysInMonth(year, month))
}
