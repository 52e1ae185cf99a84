package streak

import "github.com/gerrardelliot83-create/floe/internal/model"

type badge struct {
	id          string
	title       string
	icon        string
	requirement string
	unlocked    func(model.StreakRecord) bool
}

var catalog = []badge{
	{"first", "First Step", "🎯", "1 session", func(r model.StreakRecord) bool { return r.TotalSessions >= 1 }},
	{"week", "Week Warrior", "🔥", "7 day streak", func(r model.StreakRecord) bool { return r.CurrentStreak >= 7 }},
	{"month", "Monthly Master", "🏆", "30 day streak", func(r model.StreakRecord) bool { return r.CurrentStreak >= 30 }},
	{"25hours", "25 Hour Club", "⏰", "25 hours focus", func(r model.StreakRecord) bool { return r.TotalFocusMinutes >= 1500 }},
	{"century", "Century", "💯", "100 day streak", func(r model.StreakRecord) bool { return r.LongestStreak >= 100 }},
}

// Achievements evaluates the catalog against the current record. Badges
// tied to the current streak lock again when the streak resets.
func Achievements(rec model.StreakRecord) []model.Achievement {
	out := make([]model.Achievement, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, model.Achievement{
			ID:          b.id,
			Title:       b.title,
			Icon:        b.icon,
			Requirement: b.requirement,
			Unlocked:    b.unlocked(rec),
		})
	}
	return out
}

// NewlyUnlocked lists achievements unlocked in after but not in before.
func NewlyUnlocked(before, after model.StreakRecord) []model.Achievement {
	prev := Achievements(before)
	var out []model.Achievement
	for i, a := range Achievements(after) {
		if a.Unlocked && !prev[i].Unlocked {
			out = append(out, a)
		}
	}
	return out
}
