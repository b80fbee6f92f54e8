package parser

import (
	"time"

	"zombiezen.com/go/gregorian"
)

// maxYear keeps saturated numbers out of the calendar.
const maxYear = 292278993

// newDate builds a calendar date, rejecting out-of-range components instead
// of normalizing them.
func newDate(year, month, day int64) (gregorian.Date, bool) {
	if year < 1 || year > maxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return gregorian.Date{}, false
	}
	d := gregorian.NewDate(int(year), time.Month(month), int(day))
	if d.Year() != int(year) || d.Month() != time.Month(month) || d.Day() != int(day) {
		return gregorian.Date{}, false
	}
	return d, true
}

func dateOf(t time.Time) gregorian.Date {
	return gregorian.NewDate(t.Year(), t.Month(), t.Day())
}

func addDays(d gregorian.Date, n int) gregorian.Date {
	return gregorian.NewDate(d.Year(), d.Month(), d.Day()+n)
}

// timeOfDay is a wall-clock time without a date.
type timeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func newTimeOfDay(hour, minute, second int64) (timeOfDay, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return timeOfDay{}, false
	}
	return timeOfDay{Hour: int(hour), Minute: int(minute), Second: int(second)}, true
}

func combine(d gregorian.Date, tod timeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, tod.Second, 0, loc)
}

func midnight(d gregorian.Date, loc *time.Location) time.Time {
	return combine(d, timeOfDay{}, loc)
}
