// Package schedule provides calendar arithmetic for due dates and recurrences.
package schedule

import (
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a full English day name to a weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	return model.DateOf(t).In(t.Location())
}

// NextWeekday returns midnight of the next wd strictly after now's date.
// If now falls on wd the result is one week later.
func NextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return StartOfDay(now).AddDate(0, 0, delta)
}

// AddMonths adds n months, clamping the day to the end of the target month
// (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// NextOccurrence returns the due time following due for a recurrence.
func NextOccurrence(due time.Time, r model.Recurrence) time.Time {
	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	switch r.Pattern {
	case model.PatternDaily:
		return due.AddDate(0, 0, interval)
	case model.PatternMonthly:
		return AddMonths(due, interval)
	default:
		return due.AddDate(0, 0, 7*interval)
	}
}
