package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/schedule"
	"github.com/gerrardelliot83-create/floe/internal/store"
	"github.com/gerrardelliot83-create/floe/internal/streak"
)

const maxSaveAttempts = 3

// DefaultDailyGoal is the number of focus sessions aimed for each day.
const DefaultDailyGoal = 4

// SessionRequest describes a finished focus phase.
type SessionRequest struct {
	UserID    string `validate:"required"`
	Minutes   int    `validate:"gte=1,lte=600"`
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time `validate:"required"`
}

// Summary is the streak view shown by the CLI, dashboard and API.
type Summary struct {
	Record       model.StreakRecord  `json:"record"`
	Status       streak.StatusInfo   `json:"status"`
	Level        model.Level         `json:"level"`
	Progress     float64             `json:"progress"`
	Achievements []model.Achievement `json:"achievements"`
	Today        DailyProgress       `json:"today"`
}

// DailyProgress counts today's focus sessions against the daily goal.
type DailyProgress struct {
	Sessions int `json:"sessions"`
	Goal     int `json:"goal"`
}

// Met reports whether the goal has been reached.
func (d DailyProgress) Met() bool {
	return d.Goal > 0 && d.Sessions >= d.Goal
}

func (d DailyProgress) String() string {
	return fmt.Sprintf("%d/%d sessions", d.Sessions, d.Goal)
}

// Outcome is the result of recording a focus session.
type Outcome struct {
	Session  model.FocusSession  `json:"session"`
	Summary  Summary             `json:"summary"`
	Unlocked []model.Achievement `json:"unlocked"`
}

// Focus records focus sessions and maintains the streak record.
type Focus struct {
	store     store.Store
	logger    logging.Logger
	newID     func() string
	dailyGoal int
}

// NewFocus returns a focus service backed by st.
func NewFocus(st store.Store, logger logging.Logger) *Focus {
	return &Focus{store: st, logger: logger, newID: newID, dailyGoal: DefaultDailyGoal}
}

// SetDailyGoal changes the daily session goal. Values below one are ignored.
func (s *Focus) SetDailyGoal(goal int) {
	if goal >= 1 {
		s.dailyGoal = goal
	}
}

// Complete stores the session and folds it into the user's streak in one
// write. Concurrent writers are detected by the store; the update is
// reapplied on a fresh read. When Complete fails nothing is stored.
func (s *Focus) Complete(ctx context.Context, req SessionRequest) (Outcome, error) {
	if err := validate.Struct(req); err != nil {
		return Outcome{}, err
	}
	if req.StartedAt.IsZero() {
		req.StartedAt = req.EndedAt.Add(-time.Duration(req.Minutes) * time.Minute)
	}
	session := model.FocusSession{
		ID:        s.newID(),
		UserID:    req.UserID,
		Kind:      model.KindFocus,
		Minutes:   req.Minutes,
		TaskID:    req.TaskID,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	}
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		before, prev, err := s.load(ctx, req.UserID)
		if err != nil {
			return Outcome{}, err
		}
		after := streak.RecordSession(before, req.Minutes, req.EndedAt)
		err = s.store.RecordFocus(ctx, session, after, prev)
		if errors.Is(err, store.ErrConflict) {
			s.logger.Warnf("streak update conflict for %s (attempt %d/%d)", req.UserID, attempt, maxSaveAttempts)
			continue
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to save session: %w", err)
		}
		summary := summarize(after, model.DateOf(req.EndedAt))
		if summary.Today, err = s.progress(ctx, req.UserID, req.EndedAt); err != nil {
			// The session is already stored; only the count is missing.
			s.logger.Warnf("failed to count today's sessions for %s: %v", req.UserID, err)
			summary.Today = DailyProgress{Goal: s.dailyGoal}
		}
		return Outcome{
			Session:  session,
			Summary:  summary,
			Unlocked: streak.NewlyUnlocked(before, after),
		}, nil
	}
	return Outcome{}, fmt.Errorf("failed to save streak after %d attempts: %w", maxSaveAttempts, store.ErrConflict)
}

// LogBreak stores a finished break. Breaks never touch the streak.
func (s *Focus) LogBreak(ctx context.Context, req SessionRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.store.InsertSession(ctx, model.FocusSession{
		ID:        s.newID(),
		UserID:    req.UserID,
		Kind:      model.KindBreak,
		Minutes:   req.Minutes,
		TaskID:    req.TaskID,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	})
}

// Summary reports the user's streak as of now.
func (s *Focus) Summary(ctx context.Context, userID string, now time.Time) (Summary, error) {
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	summary := summarize(rec, model.DateOf(now))
	if summary.Today, err = s.progress(ctx, userID, now); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// progress counts the focus sessions that ended on now's date.
func (s *Focus) progress(ctx context.Context, userID string, now time.Time) (DailyProgress, error) {
	start := schedule.StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	sessions, err := s.store.ListSessions(ctx, userID, start)
	if err != nil {
		return DailyProgress{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	p := DailyProgress{Goal: s.dailyGoal}
	for _, fs := range sessions {
		if fs.Kind == model.KindFocus && fs.EndedAt.Before(end) {
			p.Sessions++
		}
	}
	return p, nil
}

// load returns the stored record and the UpdatedAt to compare against, or a
// fresh record and a zero time when none exists yet.
func (s *Focus) load(ctx context.Context, userID string) (model.StreakRecord, time.Time, error) {
	rec, err := s.store.GetStreak(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.NewStreakRecord(s.newID(), userID), time.Time{}, nil
	}
	if err != nil {
		return model.StreakRecord{}, time.Time{}, fmt.Errorf("failed to load streak: %w", err)
	}
	return rec, rec.UpdatedAt, nil
}

func summarize(rec model.StreakRecord, today model.Date) Summary {
	return Summary{
		Record:       rec,
		Status:       streak.Status(rec, today),
		Level:        streak.LevelFor(rec.TotalSessions),
		Progress:     streak.Progress(rec.TotalSessions),
		Achievements: streak.Achievements(rec),
	}
}
