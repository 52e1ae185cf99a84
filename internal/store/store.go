// Package store persists tasks, focus sessions and streak records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/config"
	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by SaveStreak when the stored record changed
	// since it was read.
	ErrConflict = errors.New("streak record was modified concurrently")
)

// Store is implemented by every persistence backend.
type Store interface {
	CreateTask(ctx context.Context, task model.Task) error
	UpdateTask(ctx context.Context, task model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	InsertSession(ctx context.Context, session model.FocusSession) error
	// ListSessions returns a user's sessions that ended at or after since,
	// oldest first. A zero since returns all of them.
	ListSessions(ctx context.Context, userID string, since time.Time) ([]model.FocusSession, error)

	GetStreak(ctx context.Context, userID string) (model.StreakRecord, error)
	// SaveStreak writes rec only if the stored row still has prevUpdatedAt.
	// A zero prevUpdatedAt means the caller expects no row yet.
	SaveStreak(ctx context.Context, rec model.StreakRecord, prevUpdatedAt time.Time) error
	// RecordFocus inserts session and saves rec atomically. On any error,
	// including ErrConflict, neither is written.
	RecordFocus(ctx context.Context, session model.FocusSession, rec model.StreakRecord, prevUpdatedAt time.Time) error

	Close() error
}

// Open connects to the backend selected in cfg.
func Open(ctx context.Context, cfg config.StoreSettings, logger logging.Logger) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendSQLite:
		st, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Debugf("opened sqlite store at %s", cfg.Path)
		return st, nil
	case config.BackendPostgres:
		st, err := OpenPostgres(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		logger.Debug("connected to postgres store")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
