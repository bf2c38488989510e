package domain

import "time"

// NextServiceDate returns the default follow-up service date for a job card
// completed on the given day: three calendar months ahead, shifted forward by
// one day when that lands on the shop's off day.
func NextServiceDate(completed time.Time, offDay time.Weekday) time.Time {
	next := completed.AddDate(0, 3, 0)
	return ShiftOffDay(next, offDay)
}

// ShiftOffDay moves a date forward one day if it falls on the off day.
func ShiftOffDay(date time.Time, offDay time.Weekday) time.Time {
	if date.Weekday() == offDay {
		return date.AddDate(0, 0, 1)
	}
	return date
}

// ServiceDates resolves the last/next service dates written to the customer on
// job-card completion. Explicit values win; defaults are the completion day
// and completion day + 3 months respectively.
func ServiceDates(completed time.Time, explicitLast, explicitNext *time.Time, offDay time.Weekday) (last, next time.Time) {
	last = completed
	if explicitLast != nil {
		last = *explicitLast
	}
	if explicitNext != nil {
		return last, ShiftOffDay(*explicitNext, offDay)
	}
	return last, NextServiceDate(completed, offDay)
}
