package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBeginningAndEndOfDay(t *testing.T) {
	at := time.Date(2026, 8, 28, 14, 30, 45, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), BeginningOfDay(at))
	assert.Equal(t, time.Date(2026, 8, 28, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), EndOfDay(at))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b), "calendar days, not 24h periods")
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2026, time.January))
	assert.Equal(t, 28, DaysInMonth(2026, time.February))
	assert.Equal(t, 29, DaysInMonth(2028, time.February))
	assert.Equal(t, 30, DaysInMonth(2026, time.April))
}

func TestCombineDateAndTime(t *testing.T) {
	day := time.Date(2026, 8, 28, 14, 30, 45, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC), CombineDateAndTime(day, "09:15"))
	assert.Equal(t, day, CombineDateAndTime(day, ""))
	assert.Equal(t, day, CombineDateAndTime(day, "9am"))
}
