package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quickadd"
	"github.com/gerrardelliot83-create/floe/internal/streak"
)

const (
	maxTitleWidth = 40
	overdueLimit  = 5
	topTagLimit   = 5
)

var priorityOrder = []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}

// RenderStreak prints the streak status, level and achievement table.
func RenderStreak(w io.Writer, rec model.StreakRecord, today model.Date) error {
	status := streak.Status(rec, today)
	level := streak.LevelFor(rec.TotalSessions)
	next := "∞"
	if level.NextAt != streak.Unbounded {
		next = fmt.Sprintf("%d", level.NextAt)
	}

	lines := []string{
		"Streak",
		status.Message,
		fmt.Sprintf("Current: %s  Longest: %s", days(rec.CurrentStreak), days(rec.LongestStreak)),
		fmt.Sprintf("Level %d %s: %d/%s sessions (%.0f%%)", level.Level, level.Title, rec.TotalSessions, next, streak.Progress(rec.TotalSessions)*100),
		fmt.Sprintf("Total focus: %s", FormatMinutes(rec.TotalFocusMinutes)),
		"",
		"Achievements",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, 5)
	for _, a := range streak.Achievements(rec) {
		state := "locked"
		if a.Unlocked {
			state = "unlocked"
		}
		rows = append(rows, []string{a.Icon, a.Title, a.Requirement, state})
	}
	for _, line := range formatTable([]string{"", "Badge", "Requirement", "Status"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// RenderTasks prints the task backlog summary.
func RenderTasks(w io.Writer, tasks []model.Task, now, from time.Time) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}
	sum := TaskSummary(tasks, now, from, now)
	lines := []string{
		"Tasks",
		fmt.Sprintf("Open: %d  Completed: %d  Overdue: %d", sum.Open, sum.Completed, sum.Overdue),
		fmt.Sprintf("Completion rate: %.2f%%", sum.CompletionRate*100),
		fmt.Sprintf("Completed since %s: %d", from.Format("2006-01-02"), sum.CompletedInRange),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(priorityOrder))
	for _, p := range priorityOrder {
		rows = append(rows, []string{string(p), fmt.Sprintf("%d", sum.OpenByPriority[p])})
	}
	for _, line := range formatTable([]string{"Priority", "Open"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if top := TopTags(tasks, topTagLimit); len(top) > 0 {
		parts := make([]string, len(top))
		for i, tc := range top {
			parts[i] = fmt.Sprintf("#%s (%d)", tc.Tag, tc.Count)
		}
		if _, err := fmt.Fprintf(w, "\nTop tags: %s\n", strings.Join(parts, ", ")); err != nil {
			return err
		}
	}

	if overdue := OverdueTasks(tasks, now, overdueLimit); len(overdue) > 0 {
		if _, err := fmt.Fprintln(w, "\nOverdue"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(overdue))
		for _, t := range overdue {
			rows = append(rows, []string{
				t.ShortID(),
				truncate(t.Title, maxTitleWidth),
				quickadd.DueLabel(*t.Due, t.HasTime, now),
			})
		}
		for _, line := range formatTable([]string{"ID", "Title", "Due"}, rows, nil) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
