// Package streak computes focus streaks, levels and achievements.
//
// All functions are pure: callers pass the clock in and persist the
// returned record themselves.
package streak

import (
	"fmt"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// RecordSession applies one completed focus session to rec.
// Days are compared by calendar date in now's location; multiple sessions
// on one day count once toward the streak but always add to the totals.
func RecordSession(rec model.StreakRecord, minutes int, now time.Time) model.StreakRecord {
	today := model.DateOf(now)

	current := 1
	if last := rec.LastSessionDate; last != nil {
		switch *last {
		case today:
			current = rec.CurrentStreak
		case today.AddDays(-1):
			current = rec.CurrentStreak + 1
		}
	}
	// A same-day record restored with a zero streak still counts today.
	if current < 1 {
		current = 1
	}

	out := rec
	out.CurrentStreak = current
	out.LongestStreak = max(current, rec.LongestStreak)
	out.LastSessionDate = &today
	out.TotalSessions = rec.TotalSessions + 1
	out.TotalFocusMinutes = rec.TotalFocusMinutes + minutes
	out.UpdatedAt = now
	return out
}

// StatusInfo describes whether the streak is alive.
type StatusInfo struct {
	Active  bool   `json:"active"`
	Message string `json:"message"`
}

// Status reports the streak state as of today.
func Status(rec model.StreakRecord, today model.Date) StatusInfo {
	if rec.LastSessionDate == nil {
		return StatusInfo{Active: false, Message: "Start your first session!"}
	}
	switch *rec.LastSessionDate {
	case today:
		return StatusInfo{Active: true, Message: fmt.Sprintf("%d day streak! Keep it going!", rec.CurrentStreak)}
	case today.AddDays(-1):
		return StatusInfo{Active: true, Message: fmt.Sprintf("Complete today's session to continue your %d day streak!", rec.CurrentStreak)}
	}
	return StatusInfo{Active: false, Message: "Streak broken. Start a new one today!"}
}
