// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

const sparkChars = " .:-=+*#%@"

// DailyFocus totals focus minutes per calendar day from `from` to `to`
// inclusive. Days without sessions are present with zero minutes.
func DailyFocus(sessions []model.FocusSession, from, to model.Date) []model.DailyFocus {
	if to.Before(from) {
		return nil
	}
	index := map[model.Date]int{}
	var days []model.DailyFocus
	for d := from; !to.Before(d); d = d.AddDays(1) {
		index[d] = len(days)
		days = append(days, model.DailyFocus{Date: d})
	}
	for _, s := range sessions {
		if s.Kind != model.KindFocus {
			continue
		}
		i, ok := index[model.DateOf(s.EndedAt)]
		if !ok {
			continue
		}
		days[i].Minutes += s.Minutes
		days[i].Sessions++
	}
	return days
}

// TaskStats summarizes a task list.
type TaskStats struct {
	Total            int                    `json:"total"`
	Completed        int                    `json:"completed"`
	Open             int                    `json:"open"`
	Overdue          int                    `json:"overdue"`
	CompletedInRange int                    `json:"completed_in_range"`
	CompletionRate   float64                `json:"completion_rate"`
	OpenByPriority   map[model.Priority]int `json:"open_by_priority"`
}

// TaskSummary computes completion and backlog figures. CompletedInRange
// counts completions with from <= CompletedAt < to.
func TaskSummary(tasks []model.Task, now, from, to time.Time) TaskStats {
	out := TaskStats{OpenByPriority: map[model.Priority]int{}}
	for _, t := range tasks {
		out.Total++
		if t.Completed {
			out.Completed++
			if t.CompletedAt != nil && !t.CompletedAt.Before(from) && t.CompletedAt.Before(to) {
				out.CompletedInRange++
			}
			continue
		}
		out.Open++
		out.OpenByPriority[t.Priority]++
		if t.Overdue(now) {
			out.Overdue++
		}
	}
	if out.Total > 0 {
		out.CompletionRate = float64(out.Completed) / float64(out.Total)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatMinutes renders minutes as "45m" or "2h 05m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// RenderSummary prints focus totals for the given days.
func RenderSummary(w io.Writer, days []model.DailyFocus, window int) error {
	sessions, minutes := 0, 0
	best := -1
	for i, d := range days {
		sessions += d.Sessions
		minutes += d.Minutes
		if d.Minutes > 0 && (best < 0 || d.Minutes > days[best].Minutes) {
			best = i
		}
	}
	if sessions == 0 {
		_, err := fmt.Fprintln(w, "No focus sessions found.")
		return err
	}
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = float64(d.Minutes)
	}

	lines := []string{
		"Focus",
		fmt.Sprintf("Sessions: %d", sessions),
		fmt.Sprintf("Focus time: %s", FormatMinutes(minutes)),
		fmt.Sprintf("Avg per day: %s", FormatMinutes(minutes/len(days))),
		fmt.Sprintf("Best day: %s (%s)", days[best].Date, FormatMinutes(days[best].Minutes)),
		fmt.Sprintf("Trend: %s", Sparkline(MovingAverage(values, window))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
