package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
)

// PostgresStore is a PostgreSQL-backed store for shared deployments.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// OpenPostgres connects to dsn and creates missing tables.
func OpenPostgres(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.EnsureTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure tables: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureTables creates the schema if it doesn't exist.
func (s *PostgresStore) EnsureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			title          TEXT NOT NULL,
			priority       TEXT NOT NULL,
			due_at         TIMESTAMPTZ,
			has_time       BOOLEAN NOT NULL DEFAULT FALSE,
			tags           TEXT[] NOT NULL DEFAULT '{}',
			recur_pattern  TEXT NOT NULL DEFAULT '',
			recur_interval INTEGER NOT NULL DEFAULT 0,
			completed      BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at   TIMESTAMPTZ,
			parent_id      TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, completed)`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			kind       TEXT NOT NULL,
			minutes    INTEGER NOT NULL,
			task_id    TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			ended_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_user_ended ON focus_sessions(user_id, ended_at)`,
		`CREATE TABLE IF NOT EXISTS streaks (
			user_id             TEXT PRIMARY KEY,
			id                  TEXT NOT NULL,
			current_streak      INTEGER NOT NULL,
			longest_streak      INTEGER NOT NULL,
			last_session_date   DATE,
			total_sessions      INTEGER NOT NULL,
			total_focus_minutes INTEGER NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Postgres keeps microseconds; CAS comparisons must use the stored precision.
func pgTime(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

func pgNullableTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := pgTime(*t)
	return &v
}

// CreateTask inserts a new task.
func (s *PostgresStore) CreateTask(ctx context.Context, t model.Task) error {
	pattern, interval := recurrenceColumns(t.Recurring)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, user_id, title, priority, due_at, has_time, tags, recur_pattern, recur_interval, completed, completed_at, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.UserID, t.Title, string(t.Priority), pgNullableTime(t.Due), t.HasTime, tagsOrEmpty(t.Tags),
		pattern, interval, t.Completed, pgNullableTime(t.CompletedAt), t.ParentID, pgTime(t.CreatedAt), pgTime(t.UpdatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert task: %v", err)
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask replaces every mutable column of an existing task.
func (s *PostgresStore) UpdateTask(ctx context.Context, t model.Task) error {
	pattern, interval := recurrenceColumns(t.Recurring)
	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks SET title = $2, priority = $3, due_at = $4, has_time = $5, tags = $6, recur_pattern = $7,
			recur_interval = $8, completed = $9, completed_at = $10, parent_id = $11, updated_at = $12
		WHERE id = $1`,
		t.ID, t.Title, string(t.Priority), pgNullableTime(t.Due), t.HasTime, tagsOrEmpty(t.Tags), pattern, interval,
		t.Completed, pgNullableTime(t.CompletedAt), t.ParentID, pgTime(t.UpdatedAt))
	if err != nil {
		s.logger.Errorf("failed to update task: %v", err)
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const pgTaskColumns = `id, user_id, title, priority, due_at, has_time, tags, recur_pattern, recur_interval, completed, completed_at, parent_id, created_at, updated_at`

// GetTask retrieves a single task by ID.
func (s *PostgresStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgTaskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPgTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns open tasks first, ordered by due time then creation.
func (s *PostgresStore) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	clauses := []string{"TRUE"}
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if !filter.ShowCompleted {
		clauses = append(clauses, "NOT completed")
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s
		ORDER BY completed ASC, due_at ASC NULLS LAST, created_at ASC`, pgTaskColumns, strings.Join(clauses, " AND "))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("failed to query tasks: %v", err)
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanPgTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// DeleteTask removes a task.
func (s *PostgresStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSession stores a finished timer phase.
func (s *PostgresStore) InsertSession(ctx context.Context, fs model.FocusSession) error {
	if err := s.insertSession(ctx, s.pool, fs); err != nil {
		s.logger.Errorf("failed to insert focus session: %v", err)
		return err
	}
	return nil
}

// pgExecer is satisfied by both the pool and a transaction.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) insertSession(ctx context.Context, ex pgExecer, fs model.FocusSession) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO focus_sessions (id, user_id, kind, minutes, task_id, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fs.ID, fs.UserID, string(fs.Kind), fs.Minutes, fs.TaskID, pgTime(fs.StartedAt), pgTime(fs.EndedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListSessions returns sessions for a user ordered by end time.
func (s *PostgresStore) ListSessions(ctx context.Context, userID string, since time.Time) ([]model.FocusSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, kind, minutes, task_id, started_at, ended_at
		FROM focus_sessions
		WHERE user_id = $1 AND ($2::timestamptz IS NULL OR ended_at >= $2)
		ORDER BY ended_at ASC`, userID, pgSince(since))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.FocusSession
	for rows.Next() {
		var fs model.FocusSession
		var kind string
		if err := rows.Scan(&fs.ID, &fs.UserID, &kind, &fs.Minutes, &fs.TaskID, &fs.StartedAt, &fs.EndedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		fs.Kind = model.SessionKind(kind)
		sessions = append(sessions, fs)
	}
	return sessions, rows.Err()
}

func pgSince(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// GetStreak loads the streak record for a user.
func (s *PostgresStore) GetStreak(ctx context.Context, userID string) (model.StreakRecord, error) {
	var rec model.StreakRecord
	var lastDate *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, current_streak, longest_streak, last_session_date, total_sessions, total_focus_minutes, updated_at
		FROM streaks WHERE user_id = $1`, userID).
		Scan(&rec.ID, &rec.UserID, &rec.CurrentStreak, &rec.LongestStreak, &lastDate, &rec.TotalSessions, &rec.TotalFocusMinutes, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StreakRecord{}, ErrNotFound
	}
	if err != nil {
		return model.StreakRecord{}, fmt.Errorf("get streak: %w", err)
	}
	if lastDate != nil {
		// DATE columns come back as midnight UTC.
		d := model.DateOf(lastDate.UTC())
		rec.LastSessionDate = &d
	}
	return rec, nil
}

// SaveStreak inserts or conditionally updates the streak record.
func (s *PostgresStore) SaveStreak(ctx context.Context, rec model.StreakRecord, prevUpdatedAt time.Time) error {
	return s.saveStreak(ctx, s.pool, rec, prevUpdatedAt)
}

// RecordFocus inserts fs and saves rec in one transaction.
func (s *PostgresStore) RecordFocus(ctx context.Context, fs model.FocusSession, rec model.StreakRecord, prevUpdatedAt time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()
	if err := s.insertSession(ctx, tx, fs); err != nil {
		return err
	}
	if err := s.saveStreak(ctx, tx, rec, prevUpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) saveStreak(ctx context.Context, ex pgExecer, rec model.StreakRecord, prevUpdatedAt time.Time) error {
	var lastDate *string
	if rec.LastSessionDate != nil {
		v := rec.LastSessionDate.String()
		lastDate = &v
	}
	var sql string
	args := []any{rec.UserID, rec.CurrentStreak, rec.LongestStreak, lastDate, rec.TotalSessions, rec.TotalFocusMinutes, pgTime(rec.UpdatedAt)}
	if prevUpdatedAt.IsZero() {
		sql = `INSERT INTO streaks (user_id, current_streak, longest_streak, last_session_date, total_sessions, total_focus_minutes, updated_at, id)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO NOTHING`
		args = append(args, rec.ID)
	} else {
		sql = `UPDATE streaks SET current_streak = $2, longest_streak = $3, last_session_date = $4::date,
				total_sessions = $5, total_focus_minutes = $6, updated_at = $7
			WHERE user_id = $1 AND updated_at = $8`
		args = append(args, pgTime(prevUpdatedAt))
	}
	tag, err := ex.Exec(ctx, sql, args...)
	if err != nil {
		s.logger.Errorf("failed to save streak: %v", err)
		return fmt.Errorf("save streak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func scanPgTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var priority, pattern string
	var interval int
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &priority, &t.Due, &t.HasTime, &t.Tags, &pattern, &interval,
		&t.Completed, &t.CompletedAt, &t.ParentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Priority = model.Priority(priority)
	if pattern != "" {
		t.Recurring = &model.Recurrence{Pattern: model.Pattern(pattern), Interval: interval}
	}
	t.Tags = tagsOrEmpty(t.Tags)
	return t, nil
}

var _ Store = (*PostgresStore)(nil)
