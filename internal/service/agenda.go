package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

// Agenda horizons in days, counting today.
const (
	TodayDays    = 1
	UpcomingDays = 7
)

// AgendaDay holds the open tasks due on one date.
type AgendaDay struct {
	Date  model.Date   `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// Agenda groups open tasks by due date.
type Agenda struct {
	Overdue []model.Task `json:"overdue"`
	Days    []AgendaDay  `json:"days"`
}

// Empty reports whether nothing is due.
func (a Agenda) Empty() bool {
	return len(a.Overdue) == 0 && len(a.Days) == 0
}

// BuildAgenda groups open tasks due from now's date through days-1 days
// later. Tasks due before today go to Overdue. Completed tasks, tasks with
// no due date and tasks past the horizon are left out. Days with nothing due
// are omitted.
func BuildAgenda(tasks []model.Task, now time.Time, days int) Agenda {
	today := model.DateOf(now)
	horizon := today.AddDays(max(days, 1))
	// Stored times come back in UTC; group by the caller's calendar.
	dateOf := func(t model.Task) model.Date {
		return model.DateOf(t.Due.In(now.Location()))
	}

	due := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed || t.Due == nil {
			continue
		}
		if !dateOf(t).Before(horizon) {
			continue
		}
		due = append(due, t)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Due.Before(*due[j].Due)
	})

	var agenda Agenda
	for _, t := range due {
		day := dateOf(t)
		if day.Before(today) {
			agenda.Overdue = append(agenda.Overdue, t)
			continue
		}
		if n := len(agenda.Days); n > 0 && agenda.Days[n-1].Date == day {
			agenda.Days[n-1].Tasks = append(agenda.Days[n-1].Tasks, t)
			continue
		}
		agenda.Days = append(agenda.Days, AgendaDay{Date: day, Tasks: []model.Task{t}})
	}
	return agenda
}

// Agenda loads the user's open tasks and groups them for the next days.
func (s *Tasks) Agenda(ctx context.Context, userID string, now time.Time, days int) (Agenda, error) {
	tasks, err := s.store.ListTasks(ctx, model.TaskFilter{UserID: userID})
	if err != nil {
		return Agenda{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return BuildAgenda(tasks, now, days), nil
}
