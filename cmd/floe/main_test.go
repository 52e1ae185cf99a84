package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

func setupHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("FLOE_STORE", "")
	t.Setenv("FLOE_USER", "")
	t.Setenv("FLOE_LOG_LEVEL", "")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestAddDryRunDoesNotTouchStore(t *testing.T) {
	setupHome(t)
	out := run(t, "add", "--dry-run", "Pay", "rent", "#home", "high", "priority")
	assert.Equal(t, "Pay rent · high priority · #home\n", out)
	_, err := os.Stat(filepath.Join(os.Getenv("XDG_DATA_HOME"), "floe", "floe.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestTaskCommands(t *testing.T) {
	setupHome(t)

	out := run(t, "add", "Water plants every monday #home")
	require.True(t, strings.HasPrefix(out, "Added "), out)
	id := strings.Fields(out)[1]

	out = run(t, "tasks", "--tag", "#home")
	assert.Contains(t, out, id+" [ ] Water plants")
	assert.Contains(t, out, "every week")

	out = run(t, "done", id)
	assert.Contains(t, out, `Completed "Water plants"`)
	assert.Contains(t, out, "Next: ")

	out = run(t, "tasks", "--all")
	assert.Equal(t, 2, strings.Count(out, "Water plants"), out)
	assert.Contains(t, out, id+" [x] Water plants")

	out = run(t, "rm", id)
	assert.Contains(t, out, `Deleted "Water plants"`)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"done", "zzzzzzzz"})
	assert.Error(t, cmd.Execute())
}

func TestSessionAndStreak(t *testing.T) {
	setupHome(t)

	out := run(t, "session", "--minutes", "30")
	assert.Contains(t, out, "Logged 30m of focus.")
	assert.Contains(t, out, "Unlocked: ")

	assert.Contains(t, out, "Today: 1/4 sessions")

	out = run(t, "streak")
	assert.Contains(t, out, "1 day streak! Keep it going!")
	assert.Contains(t, out, "Today: 1/4 sessions")
	assert.Contains(t, out, "Level 1 Beginner")

	out = run(t, "stats", "--days", "3")
	assert.Contains(t, out, "Daily Focus")
}

func TestDailyGoalFromConfig(t *testing.T) {
	setupHome(t)
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "floe", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[general]\ndaily-goal = 1\n"), 0o644))

	out := run(t, "session", "--minutes", "25", "--config", path)
	assert.Contains(t, out, "Today: 1/1 sessions, goal reached")
}

func TestTasksAgenda(t *testing.T) {
	setupHome(t)
	run(t, "add", "Call mom today")
	run(t, "add", "Pay rent in 3 days")
	run(t, "add", "Someday maybe")

	out := run(t, "tasks", "--today")
	assert.Contains(t, out, "Due today\n")
	assert.Contains(t, out, "Call mom")
	assert.NotContains(t, out, "Pay rent")
	assert.NotContains(t, out, "Someday")

	out = run(t, "tasks", "--upcoming")
	assert.Contains(t, out, "Call mom")
	assert.Contains(t, out, "Pay rent")
	assert.NotContains(t, out, "Someday")
	assert.Less(t, strings.Index(out, "Call mom"), strings.Index(out, "Pay rent"))

	out = run(t, "tasks", "--today", "--user", "nobody")
	assert.Equal(t, "Nothing due.\n", out)
}

func TestExportImportRoundTrip(t *testing.T) {
	setupHome(t)
	run(t, "add", "Write report tomorrow #work")

	path := filepath.Join(t.TempDir(), "tasks.md")
	run(t, "export", "--out", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Write report")

	out := run(t, "import", path)
	assert.Equal(t, "Imported 0 of 1 tasks\n", out)

	out = run(t, "import", path, "--user", "someone-else")
	assert.Equal(t, "Imported 0 of 1 tasks\n", out)
}

func TestUserFlagScopesTasks(t *testing.T) {
	setupHome(t)
	run(t, "add", "Mine", "--user", "alice")
	out := run(t, "tasks", "--user", "bob")
	assert.Contains(t, out, "No tasks.")
}

func TestFormatTask(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -1)
	task := model.Task{
		ID:       "0190aaaa-bbbb-7ccc-8ddd-eeeeffff0001",
		Title:    "Late",
		Priority: model.PriorityHigh,
		Due:      &due,
		Tags:     []string{"work"},
	}
	got := formatTask(task, now)
	assert.True(t, strings.HasPrefix(got, task.ShortID()+" [ ] Late · high priority · due "), got)
	assert.Contains(t, got, "(overdue)")
	assert.True(t, strings.HasSuffix(got, " · #work"), got)
}
