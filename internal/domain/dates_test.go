package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextServiceDate(t *testing.T) {
	// 2025-01-15 is a Wednesday; +3 months lands on Tuesday 2025-04-15.
	completed := date(2025, time.January, 15)
	assert.Equal(t, date(2025, time.April, 15), NextServiceDate(completed, time.Saturday))
}

func TestNextServiceDateShiftsOffDay(t *testing.T) {
	// 2025-01-19 is a Sunday; +3 months is Saturday 2025-04-19.
	completed := date(2025, time.January, 19)
	assert.Equal(t, date(2025, time.April, 20), NextServiceDate(completed, time.Saturday))
}

func TestShiftOffDay(t *testing.T) {
	saturday := date(2025, time.April, 19)
	assert.Equal(t, date(2025, time.April, 20), ShiftOffDay(saturday, time.Saturday))
	assert.Equal(t, saturday, ShiftOffDay(saturday, time.Sunday))
}

func TestServiceDatesDefaults(t *testing.T) {
	completed := date(2025, time.January, 15)
	last, next := ServiceDates(completed, nil, nil, time.Saturday)
	assert.Equal(t, completed, last)
	assert.Equal(t, date(2025, time.April, 15), next)
}

func TestServiceDatesExplicitValues(t *testing.T) {
	completed := date(2025, time.January, 15)
	explicitLast := date(2025, time.January, 10)
	explicitNext := date(2025, time.March, 1)

	last, next := ServiceDates(completed, &explicitLast, &explicitNext, time.Saturday)
	assert.Equal(t, explicitLast, last)
	assert.Equal(t, explicitNext, next)
}

func TestServiceDatesExplicitNextOnOffDay(t *testing.T) {
	completed := date(2025, time.January, 15)
	explicitNext := date(2025, time.April, 19) // Saturday

	_, next := ServiceDates(completed, nil, &explicitNext, time.Saturday)
	assert.Equal(t, date(2025, time.April, 20), next)
}
