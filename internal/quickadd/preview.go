package quickadd

import (
	"fmt"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// Preview renders a one-line summary of a draft, e.g.
// `Call John · due tomorrow 14:00 · #work`.
func Preview(d model.Draft, now time.Time) string {
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	parts := []string{title}
	if d.Due != nil {
		parts = append(parts, "due "+DueLabel(*d.Due, d.HasTime, now))
	}
	if d.Priority != model.PriorityNone {
		parts = append(parts, string(d.Priority)+" priority")
	}
	for _, tag := range d.Tags {
		parts = append(parts, "#"+tag)
	}
	if d.Recurring != nil {
		parts = append(parts, RecurrenceLabel(*d.Recurring))
	}
	return strings.Join(parts, " · ")
}

// DueLabel formats a due date relative to now.
func DueLabel(due time.Time, hasTime bool, now time.Time) string {
	day := model.DateOf(due)
	today := model.DateOf(now)
	var label string
	switch day {
	case today:
		label = "today"
	case today.AddDays(1):
		label = "tomorrow"
	case today.AddDays(-1):
		label = "yesterday"
	default:
		label = due.Format("Mon Jan 2")
		if due.Year() != now.Year() {
			label = due.Format("Mon Jan 2 2006")
		}
	}
	if hasTime {
		label += " " + due.Format("15:04")
	}
	return label
}

// RecurrenceLabel formats a recurrence like "every week" or "every 2 months".
func RecurrenceLabel(r model.Recurrence) string {
	unit := map[model.Pattern]string{
		model.PatternDaily:   "day",
		model.PatternWeekly:  "week",
		model.PatternMonthly: "month",
	}[r.Pattern]
	if unit == "" {
		unit = string(r.Pattern)
	}
	if r.Interval <= 1 {
		return "every " + unit
	}
	return fmt.Sprintf("every %d %ss", r.Interval, unit)
}
