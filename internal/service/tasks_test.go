package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

func TestAddQuickPersistsParsedTask(t *testing.T) {
	st := openStore(t)
	svc := newTestTasks(st)

	task, draft, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "Call mom tomorrow at 3pm #family"}, tuesday)
	require.NoError(t, err)
	assert.Equal(t, "Call mom", draft.Title)
	assert.Equal(t, "id-001", task.ID)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, []string{"family"}, task.Tags)

	stored, err := st.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Due)
	assert.True(t, time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC).Equal(*stored.Due))
	assert.True(t, stored.HasTime)
}

func TestAddQuickKeepsExplicitPriority(t *testing.T) {
	svc := newTestTasks(openStore(t))
	task, _, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "Ship release high priority"}, tuesday)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, task.Priority)
}

func TestAddQuickRejectsEmptyTitle(t *testing.T) {
	svc := newTestTasks(openStore(t))

	_, draft, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "#work tomorrow"}, tuesday)
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Equal(t, []string{"work"}, draft.Tags)

	_, _, err = svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: ""}, tuesday)
	assert.Error(t, err)
}

func TestCompleteSpawnsNextOccurrence(t *testing.T) {
	st := openStore(t)
	svc := newTestTasks(st)

	task, _, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "Standup every monday at 9am #team"}, tuesday)
	require.NoError(t, err)
	require.NotNil(t, task.Due)

	doneAt := tuesday.Add(6 * 24 * time.Hour)
	done, next, err := svc.Complete(ctx, task.ID, doneAt)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, next)
	assert.Equal(t, task.ID, next.ParentID)
	assert.Equal(t, "Standup", next.Title)
	assert.Equal(t, []string{"team"}, next.Tags)
	assert.True(t, time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC).Equal(*next.Due))

	open, err := svc.List(ctx, model.TaskFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, next.ID, open[0].ID)

	_, _, err = svc.Complete(ctx, task.ID, doneAt)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteWithoutDueDoesNotSpawn(t *testing.T) {
	svc := newTestTasks(openStore(t))
	task, _, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "Water plants"}, tuesday)
	require.NoError(t, err)

	_, next, err := svc.Complete(ctx, task.ID, tuesday)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestCompleteMissingTask(t *testing.T) {
	svc := newTestTasks(openStore(t))
	_, _, err := svc.Complete(ctx, "nope", tuesday)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveByPrefix(t *testing.T) {
	st := openStore(t)
	svc := newTestTasks(st)
	for _, text := range []string{"one", "two"} {
		_, _, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: text}, tuesday)
		require.NoError(t, err)
	}

	task, err := svc.Resolve(ctx, "u1", "id-002")
	require.NoError(t, err)
	assert.Equal(t, "two", task.Title)

	task, err = svc.Resolve(ctx, "u1", "001")
	require.NoError(t, err)
	assert.Equal(t, "one", task.Title)

	_, err = svc.Resolve(ctx, "u1", "id-00")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = svc.Resolve(ctx, "u1", "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "id-002"))
	task, err = svc.Resolve(ctx, "u1", "id-00")
	require.NoError(t, err)
	assert.Equal(t, "one", task.Title)
}

func TestImportSkipsExisting(t *testing.T) {
	svc := newTestTasks(openStore(t))
	existing, _, err := svc.AddQuick(ctx, QuickAddRequest{UserID: "u1", Text: "keep"}, tuesday)
	require.NoError(t, err)

	n, err := svc.Import(ctx, "u1", []model.Task{
		{ID: existing.ID, Title: "keep"},
		{Title: "fresh", Tags: nil},
	}, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := svc.List(ctx, model.TaskFilter{UserID: "u1", ShowCompleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
