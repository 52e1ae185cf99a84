package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Timestamps are stored in UTC with a fixed width so text order is time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore wraps SQLite access.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			priority TEXT NOT NULL,
			due_at TEXT,
			has_time INTEGER NOT NULL DEFAULT 0,
			recur_pattern TEXT NOT NULL DEFAULT '',
			recur_interval INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			parent_id TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS task_tags (
			task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (task_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			minutes INTEGER NOT NULL,
			task_id TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS streaks (
			user_id TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			current_streak INTEGER NOT NULL,
			longest_streak INTEGER NOT NULL,
			last_session_date TEXT,
			total_sessions INTEGER NOT NULL,
			total_focus_minutes INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, completed);`,
		`CREATE INDEX IF NOT EXISTS idx_task_tags_tag ON task_tags(tag);`,
		`CREATE INDEX IF NOT EXISTS idx_focus_sessions_user_ended ON focus_sessions(user_id, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateTask inserts a task and its tags.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	pattern, interval := recurrenceColumns(task.Recurring)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, priority, due_at, has_time, recur_pattern, recur_interval, completed, completed_at, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.Title,
		string(task.Priority),
		nullableTime(task.Due),
		task.HasTime,
		pattern,
		interval,
		task.Completed,
		nullableTime(task.CompletedAt),
		task.ParentID,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if err = insertTags(ctx, tx, task.ID, task.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTask replaces every mutable column of an existing task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	pattern, interval := recurrenceColumns(task.Recurring)
	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, priority = ?, due_at = ?, has_time = ?, recur_pattern = ?, recur_interval = ?,
			completed = ?, completed_at = ?, parent_id = ?, updated_at = ?
		 WHERE id = ?`,
		task.Title,
		string(task.Priority),
		nullableTime(task.Due),
		task.HasTime,
		pattern,
		interval,
		task.Completed,
		nullableTime(task.CompletedAt),
		task.ParentID,
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, task.ID); err != nil {
		return err
	}
	if err = insertTags(ctx, tx, task.ID, task.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTags(ctx context.Context, tx *sql.Tx, taskID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, tag := range tags {
		if _, err := stmt.ExecContext(ctx, taskID, i, tag); err != nil {
			return err
		}
	}
	return nil
}

const taskColumns = `id, user_id, title, priority, due_at, has_time, recur_pattern, recur_interval, completed, completed_at, parent_id, created_at, updated_at`

// GetTask loads a single task.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	tags, err := s.tagsFor(ctx, []string{id})
	if err != nil {
		return model.Task{}, err
	}
	task.Tags = tagsOrEmpty(tags[id])
	return task, nil
}

// ListTasks returns open tasks first, ordered by due time then creation.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if !filter.ShowCompleted {
		clauses = append(clauses, "completed = 0")
	}
	if filter.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM task_tags tt WHERE tt.task_id = tasks.id AND tt.tag = ?)")
		args = append(args, filter.Tag)
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks
		WHERE %s
		ORDER BY completed ASC, due_at IS NULL, due_at ASC, created_at ASC`, taskColumns, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var tasks []model.Task
	var ids []string
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Tags = tagsOrEmpty(tags[tasks[i].ID])
	}
	return tasks, nil
}

func (s *SQLiteStore) tagsFor(ctx context.Context, ids []string) (map[string][]string, error) {
	result := map[string][]string{}
	if len(ids) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT task_id, tag FROM task_tags
		WHERE task_id IN (%s)
		ORDER BY task_id, position`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var taskID, tag string
		if err := rows.Scan(&taskID, &tag); err != nil {
			return nil, err
		}
		result[taskID] = append(result[taskID], tag)
	}
	return result, rows.Err()
}

// DeleteTask removes a task and its tags.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSession stores a finished timer phase.
func (s *SQLiteStore) InsertSession(ctx context.Context, session model.FocusSession) error {
	return insertSession(ctx, s.db, session)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSession(ctx context.Context, ex execer, session model.FocusSession) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO focus_sessions (id, user_id, kind, minutes, task_id, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		string(session.Kind),
		session.Minutes,
		session.TaskID,
		formatTime(session.StartedAt),
		formatTime(session.EndedAt),
	)
	return err
}

// ListSessions returns sessions for a user ordered by end time.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string, since time.Time) ([]model.FocusSession, error) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}
	if !since.IsZero() {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(since))
	}
	query := fmt.Sprintf(`SELECT id, user_id, kind, minutes, task_id, started_at, ended_at
		FROM focus_sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.FocusSession
	for rows.Next() {
		var fs model.FocusSession
		var kind, startedAt, endedAt string
		if err := rows.Scan(&fs.ID, &fs.UserID, &kind, &fs.Minutes, &fs.TaskID, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		fs.Kind = model.SessionKind(kind)
		if fs.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if fs.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetStreak loads the streak record for a user.
func (s *SQLiteStore) GetStreak(ctx context.Context, userID string) (model.StreakRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, current_streak, longest_streak, last_session_date, total_sessions, total_focus_minutes, updated_at
		 FROM streaks WHERE user_id = ?`, userID)
	var rec model.StreakRecord
	var lastDate sql.NullString
	var updatedAt string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.CurrentStreak, &rec.LongestStreak, &lastDate, &rec.TotalSessions, &rec.TotalFocusMinutes, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StreakRecord{}, ErrNotFound
	}
	if err != nil {
		return model.StreakRecord{}, err
	}
	if lastDate.Valid {
		d, err := model.ParseDate(lastDate.String)
		if err != nil {
			return model.StreakRecord{}, err
		}
		rec.LastSessionDate = &d
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.StreakRecord{}, err
	}
	return rec, nil
}

// SaveStreak inserts or conditionally updates the streak record.
func (s *SQLiteStore) SaveStreak(ctx context.Context, rec model.StreakRecord, prevUpdatedAt time.Time) error {
	return saveStreak(ctx, s.db, rec, prevUpdatedAt)
}

// RecordFocus inserts session and saves rec in one transaction.
func (s *SQLiteStore) RecordFocus(ctx context.Context, session model.FocusSession, rec model.StreakRecord, prevUpdatedAt time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = insertSession(ctx, tx, session); err != nil {
		return err
	}
	if err = saveStreak(ctx, tx, rec, prevUpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func saveStreak(ctx context.Context, ex execer, rec model.StreakRecord, prevUpdatedAt time.Time) error {
	var lastDate any
	if rec.LastSessionDate != nil {
		lastDate = rec.LastSessionDate.String()
	}
	var res sql.Result
	var err error
	if prevUpdatedAt.IsZero() {
		res, err = ex.ExecContext(ctx,
			`INSERT INTO streaks (user_id, id, current_streak, longest_streak, last_session_date, total_sessions, total_focus_minutes, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id) DO NOTHING`,
			rec.UserID, rec.ID, rec.CurrentStreak, rec.LongestStreak, lastDate, rec.TotalSessions, rec.TotalFocusMinutes, formatTime(rec.UpdatedAt))
	} else {
		res, err = ex.ExecContext(ctx,
			`UPDATE streaks SET current_streak = ?, longest_streak = ?, last_session_date = ?, total_sessions = ?,
				total_focus_minutes = ?, updated_at = ?
			 WHERE user_id = ? AND updated_at = ?`,
			rec.CurrentStreak, rec.LongestStreak, lastDate, rec.TotalSessions, rec.TotalFocusMinutes, formatTime(rec.UpdatedAt),
			rec.UserID, formatTime(prevUpdatedAt))
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var priority, pattern, createdAt, updatedAt string
	var interval int
	var dueAt, completedAt sql.NullString
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &priority, &dueAt, &task.HasTime, &pattern, &interval,
		&task.Completed, &completedAt, &task.ParentID, &createdAt, &updatedAt)
	if err != nil {
		return model.Task{}, err
	}
	task.Priority = model.Priority(priority)
	if pattern != "" {
		task.Recurring = &model.Recurrence{Pattern: model.Pattern(pattern), Interval: interval}
	}
	if task.Due, err = parseNullableTime(dueAt); err != nil {
		return model.Task{}, err
	}
	if task.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return model.Task{}, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func recurrenceColumns(r *model.Recurrence) (string, int) {
	if r == nil {
		return "", 0
	}
	return string(r.Pattern), r.Interval
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func formatTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var _ Store = (*SQLiteStore)(nil)
