package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quickadd"
	"github.com/gerrardelliot83-create/floe/internal/schedule"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

// QuickAddRequest is the input of Tasks.AddQuick.
type QuickAddRequest struct {
	UserID string `validate:"required"`
	Text   string `validate:"required"`
}

// Tasks manages the task list.
type Tasks struct {
	store  store.Store
	logger logging.Logger
	newID  func() string
}

// NewTasks returns a task service backed by st.
func NewTasks(st store.Store, logger logging.Logger) *Tasks {
	return &Tasks{store: st, logger: logger, newID: newID}
}

// AddQuick parses text and stores the resulting task.
func (s *Tasks) AddQuick(ctx context.Context, req QuickAddRequest, now time.Time) (model.Task, model.Draft, error) {
	if err := validate.Struct(req); err != nil {
		return model.Task{}, model.Draft{}, err
	}
	draft := quickadd.Parse(req.Text, now)
	if draft.Title == "" {
		return model.Task{}, draft, ErrEmptyTitle
	}
	task := FromDraft(draft, req.UserID, s.newID(), now)
	if err := s.store.CreateTask(ctx, task); err != nil {
		return model.Task{}, draft, fmt.Errorf("failed to save task: %w", err)
	}
	s.logger.Debugf("added task %s %q", task.ID, task.Title)
	return task, draft, nil
}

// FromDraft builds a new open task from a parsed draft.
func FromDraft(d model.Draft, userID, id string, now time.Time) model.Task {
	priority := d.Priority
	if priority == model.PriorityNone {
		priority = model.PriorityMedium
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Task{
		ID:        id,
		UserID:    userID,
		Title:     d.Title,
		Priority:  priority,
		Due:       d.Due,
		HasTime:   d.HasTime,
		Tags:      tags,
		Recurring: d.Recurring,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete marks a task done. A recurring task with a due date spawns its
// next occurrence, which is returned as next.
func (s *Tasks) Complete(ctx context.Context, id string, now time.Time) (model.Task, *model.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, nil, err
	}
	if task.Completed {
		return task, nil, ErrAlreadyCompleted
	}
	task.Completed = true
	task.CompletedAt = &now
	task.UpdatedAt = now
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return model.Task{}, nil, fmt.Errorf("failed to complete task: %w", err)
	}

	if task.Recurring == nil || task.Due == nil {
		return task, nil, nil
	}
	due := schedule.NextOccurrence(*task.Due, *task.Recurring)
	next := model.Task{
		ID:        s.newID(),
		UserID:    task.UserID,
		Title:     task.Title,
		Priority:  task.Priority,
		Due:       &due,
		HasTime:   task.HasTime,
		Tags:      append([]string{}, task.Tags...),
		Recurring: task.Recurring,
		ParentID:  task.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTask(ctx, next); err != nil {
		return task, nil, fmt.Errorf("failed to schedule next occurrence: %w", err)
	}
	s.logger.Debugf("scheduled next occurrence %s for %s", next.ID, due.Format(time.RFC3339))
	return task, &next, nil
}

// List returns tasks matching filter.
func (s *Tasks) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes a task.
func (s *Tasks) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTask(ctx, id)
}

// Resolve finds a user's task by full id, or by a unique prefix or suffix
// such as the short id shown in listings.
func (s *Tasks) Resolve(ctx context.Context, userID, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, store.ErrNotFound
	}
	task, err := s.store.GetTask(ctx, ref)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Task{}, err
	}
	tasks, err := s.store.ListTasks(ctx, model.TaskFilter{UserID: userID, ShowCompleted: true})
	if err != nil {
		return model.Task{}, err
	}
	var match *model.Task
	for i := range tasks {
		if !strings.HasPrefix(tasks[i].ID, ref) && !strings.HasSuffix(tasks[i].ID, ref) {
			continue
		}
		if match != nil {
			return model.Task{}, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
		}
		match = &tasks[i]
	}
	if match == nil {
		return model.Task{}, store.ErrNotFound
	}
	return *match, nil
}

// Import stores tasks read from an export, assigning ids where missing.
// Tasks whose id already exists are skipped.
func (s *Tasks) Import(ctx context.Context, userID string, tasks []model.Task, now time.Time) (int, error) {
	added := 0
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = s.newID()
		} else if _, err := s.store.GetTask(ctx, task.ID); err == nil {
			s.logger.Debugf("skipping existing task %s", task.ID)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return added, err
		}
		task.UserID = userID
		if task.Priority == model.PriorityNone {
			task.Priority = model.PriorityMedium
		}
		if task.Tags == nil {
			task.Tags = []string{}
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		task.UpdatedAt = now
		if err := s.store.CreateTask(ctx, task); err != nil {
			return added, fmt.Errorf("failed to import %q: %w", task.Title, err)
		}
		added++
	}
	return added, nil
}
