package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/config"
	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "floe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func ptr(t time.Time) *time.Time { return &t }

func sampleTask(id string, created time.Time) model.Task {
	return model.Task{
		ID:        id,
		UserID:    "u1",
		Title:     "Task " + id,
		Priority:  model.PriorityMedium,
		Tags:      []string{},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	created := time.Date(2024, 3, 5, 10, 15, 0, 123, time.UTC)
	task := sampleTask("t1", created)
	task.Due = ptr(time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC))
	task.HasTime = true
	task.Tags = []string{"work", "deep", "work"}
	task.Recurring = &model.Recurrence{Pattern: model.PatternWeekly, Interval: 2}

	require.NoError(t, st.CreateTask(ctx, task))

	got, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, model.PriorityMedium, got.Priority)
	require.NotNil(t, got.Due)
	assert.True(t, task.Due.Equal(*got.Due))
	assert.True(t, got.HasTime)
	assert.Equal(t, []string{"work", "deep", "work"}, got.Tags)
	assert.Equal(t, task.Recurring, got.Recurring)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.CompletedAt)
}

func TestGetTaskNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.DeleteTask(context.Background(), "missing"), ErrNotFound)
	assert.ErrorIs(t, st.UpdateTask(context.Background(), sampleTask("missing", time.Now())), ErrNotFound)
}

func TestUpdateTaskReplacesTags(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	task := sampleTask("t1", now)
	task.Tags = []string{"a", "b"}
	require.NoError(t, st.CreateTask(ctx, task))

	task.Tags = []string{"c"}
	task.Completed = true
	task.CompletedAt = ptr(now.Add(time.Hour))
	task.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, st.UpdateTask(ctx, task))

	got, err := st.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.Tags)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
}

func TestListTasksFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	noDue := sampleTask("no-due", base)
	later := sampleTask("later", base.Add(time.Minute))
	later.Due = ptr(base.AddDate(0, 0, 3))
	later.Tags = []string{"work"}
	sooner := sampleTask("sooner", base.Add(2*time.Minute))
	sooner.Due = ptr(base.AddDate(0, 0, 1))
	done := sampleTask("done", base.Add(3*time.Minute))
	done.Completed = true
	done.Tags = []string{"work"}
	other := sampleTask("other-user", base)
	other.UserID = "u2"

	for _, task := range []model.Task{noDue, later, sooner, done, other} {
		require.NoError(t, st.CreateTask(ctx, task))
	}

	ids := func(tasks []model.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	open, err := st.ListTasks(ctx, model.TaskFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later", "no-due"}, ids(open))

	all, err := st.ListTasks(ctx, model.TaskFilter{UserID: "u1", ShowCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later", "no-due", "done"}, ids(all))

	tagged, err := st.ListTasks(ctx, model.TaskFilter{UserID: "u1", Tag: "work", ShowCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"later", "done"}, ids(tagged))
	assert.Equal(t, []string{}, open[2].Tags)
}

func TestDeleteTaskCascadesTags(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	task := sampleTask("t1", time.Now())
	task.Tags = []string{"x"}
	require.NoError(t, st.CreateTask(ctx, task))
	require.NoError(t, st.DeleteTask(ctx, "t1"))

	var n int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM task_tags`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSessionsSince(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		start := base.AddDate(0, 0, i)
		require.NoError(t, st.InsertSession(ctx, model.FocusSession{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Kind:      model.KindFocus,
			Minutes:   25,
			StartedAt: start,
			EndedAt:   start.Add(25 * time.Minute),
		}))
	}

	all, err := st.ListSessions(ctx, "u1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "a", all[0].ID)

	recent, err := st.ListSessions(ctx, "u1", base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, model.KindFocus, recent[0].Kind)

	none, err := st.ListSessions(ctx, "u2", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveStreakCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.GetStreak(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	day := model.Date{Year: 2024, Month: 3, Day: 5}
	first := model.StreakRecord{
		ID: "s1", UserID: "u1", CurrentStreak: 1, LongestStreak: 1, LastSessionDate: &day,
		TotalSessions: 1, TotalFocusMinutes: 25, UpdatedAt: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.SaveStreak(ctx, first, time.Time{}))
	// A second insert for the same user loses the race.
	assert.ErrorIs(t, st.SaveStreak(ctx, first, time.Time{}), ErrConflict)

	loaded, err := st.GetStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, day, *loaded.LastSessionDate)
	assert.True(t, first.UpdatedAt.Equal(loaded.UpdatedAt))

	second := loaded
	second.TotalSessions = 2
	second.UpdatedAt = loaded.UpdatedAt.Add(time.Hour)
	require.NoError(t, st.SaveStreak(ctx, second, loaded.UpdatedAt))

	stale := loaded
	stale.TotalSessions = 99
	assert.ErrorIs(t, st.SaveStreak(ctx, stale, loaded.UpdatedAt), ErrConflict)

	final, err := st.GetStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, final.TotalSessions)
}

func TestOpenFactory(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.StoreSettings{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "f.db")}, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Open(ctx, config.StoreSettings{Backend: "mongo"}, logging.Nop())
	assert.Error(t, err)
}

func TestRecordFocusRollsBackOnConflict(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	day := model.Date{Year: 2024, Month: 3, Day: 5}
	end := time.Date(2024, 3, 5, 9, 25, 0, 0, time.UTC)
	fs := model.FocusSession{ID: "f1", UserID: "u1", Kind: model.KindFocus, Minutes: 25, StartedAt: end.Add(-25 * time.Minute), EndedAt: end}
	rec := model.StreakRecord{ID: "s1", UserID: "u1", CurrentStreak: 1, LongestStreak: 1, LastSessionDate: &day, TotalSessions: 1, TotalFocusMinutes: 25, UpdatedAt: end}

	require.NoError(t, st.RecordFocus(ctx, fs, rec, time.Time{}))

	// A second first-insert loses; its session must not stay behind.
	fs2 := fs
	fs2.ID = "f2"
	assert.ErrorIs(t, st.RecordFocus(ctx, fs2, rec, time.Time{}), ErrConflict)

	sessions, err := st.ListSessions(ctx, "u1", time.Time{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "f1", sessions[0].ID)

	// A duplicate session id fails the insert and leaves the streak untouched.
	next := rec
	next.TotalSessions = 2
	next.UpdatedAt = end.Add(time.Hour)
	assert.Error(t, st.RecordFocus(ctx, fs, next, rec.UpdatedAt))
	loaded, err := st.GetStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.TotalSessions)
}
