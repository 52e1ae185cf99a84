package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Now    time.Time
	From   time.Time
	Days   []model.DailyFocus
	Tasks  []model.Task
	Streak model.StreakRecord
	Window int
}

// BuildReport loads the last cfg.Days days of data for cfg.UserID.
func BuildReport(ctx context.Context, st store.Store, cfg model.StatsConfig, now time.Time) (Report, error) {
	days := cfg.Days
	if days <= 0 {
		days = 1
	}
	today := model.DateOf(now)
	first := today.AddDays(-(days - 1))
	from := first.In(now.Location())

	sessions, err := st.ListSessions(ctx, cfg.UserID, from)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	tasks, err := st.ListTasks(ctx, model.TaskFilter{UserID: cfg.UserID, ShowCompleted: true})
	if err != nil {
		return Report{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	rec, err := st.GetStreak(ctx, cfg.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Report{}, fmt.Errorf("failed to load streak: %w", err)
	}

	return Report{
		Now:    now,
		From:   from,
		Days:   DailyFocus(sessions, first, today),
		Tasks:  tasks,
		Streak: rec,
		Window: cfg.CurveWindow,
	}, nil
}

// Render writes every report section. A zero width uses the terminal width.
func (r Report) Render(w io.Writer, width int, forceColor bool) error {
	if err := RenderSummary(w, r.Days, r.Window); err != nil {
		return err
	}
	if err := RenderFocusChart(w, r.Days, r.Window, width, forceColor); err != nil {
		return err
	}
	if err := RenderStreak(w, r.Streak, model.DateOf(r.Now)); err != nil {
		return err
	}
	return RenderTasks(w, r.Tasks, r.Now, r.From)
}
