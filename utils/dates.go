package utils

import "time"

// BeginningOfDay truncates t to midnight in its own location.
func BeginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day.
func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// DaysBetween returns whole calendar days from a to b, negative when b
// is earlier.
func DaysBetween(a, b time.Time) int {
	a = BeginningOfDay(a)
	b = BeginningOfDay(b)
	return int(b.Sub(a).Hours() / 24)
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CombineDateAndTime applies an "HH:MM" clock time to the date of day.
// A blank or malformed clock leaves the day's time untouched.
func CombineDateAndTime(day time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return day
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
}
