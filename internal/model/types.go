// Package model defines shared data structures.
package model

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Pattern is the cadence of a recurring task.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
)

// Recurrence describes how often a task repeats.
type Recurrence struct {
	Pattern  Pattern `json:"pattern" yaml:"pattern"`
	Interval int     `json:"interval" yaml:"interval"`
}

// Draft is the structured result of parsing a quick-add string.
type Draft struct {
	Title     string      `json:"title"`
	Priority  Priority    `json:"priority,omitempty"`
	Due       *time.Time  `json:"due,omitempty"`
	HasTime   bool        `json:"has_time"`
	Tags      []string    `json:"tags"`
	Recurring *Recurrence `json:"recurring,omitempty"`
}

// Task is a persisted to-do item.
type Task struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Title       string      `json:"title"`
	Priority    Priority    `json:"priority"`
	Due         *time.Time  `json:"due,omitempty"`
	HasTime     bool        `json:"has_time"`
	Tags        []string    `json:"tags"`
	Recurring   *Recurrence `json:"recurring,omitempty"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	ParentID    string      `json:"parent_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Overdue reports whether an open task's due time has passed.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed || t.Due == nil {
		return false
	}
	if t.HasTime {
		return t.Due.Before(now)
	}
	return DateOf(*t.Due).Before(DateOf(now))
}

// ShortIDLen is how many id characters listings show.
const ShortIDLen = 8

// ShortID returns the random tail of the id. Version 7 uuids share their
// time-ordered prefix, so the tail is what tells tasks apart.
func (t Task) ShortID() string {
	if len(t.ID) <= ShortIDLen {
		return t.ID
	}
	return t.ID[len(t.ID)-ShortIDLen:]
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	UserID        string
	Tag           string
	ShowCompleted bool
}

// SessionKind distinguishes focus time from breaks.
type SessionKind string

const (
	KindFocus SessionKind = "focus"
	KindBreak SessionKind = "break"
)

// FocusSession captures a finished timer phase.
type FocusSession struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Kind      SessionKind `json:"kind"`
	Minutes   int         `json:"minutes"`
	TaskID    string      `json:"task_id,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`
}

// StreakRecord is the per-user streak state.
type StreakRecord struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	LastSessionDate   *Date     `json:"last_session_date,omitempty"`
	TotalSessions     int       `json:"total_sessions"`
	TotalFocusMinutes int       `json:"total_focus_minutes"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewStreakRecord returns the zero-valued record used on first use.
func NewStreakRecord(id, userID string) StreakRecord {
	return StreakRecord{ID: id, UserID: userID}
}

// Level is a rank derived from the total session count.
type Level struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	NextAt int    `json:"next_at"`
}

// Achievement is a badge from the fixed catalog.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Requirement string `json:"requirement"`
	Unlocked    bool   `json:"unlocked"`
}

// Preset configures a focus/break cycle.
type Preset struct {
	Key          string
	Name         string
	FocusMinutes int
	BreakMinutes int
	Rounds       int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID      string
	Days        int
	CurveWindow int
}

// DailyFocus is the focus total for one calendar day.
type DailyFocus struct {
	Date     Date `json:"date"`
	Minutes  int  `json:"minutes"`
	Sessions int  `json:"sessions"`
}
