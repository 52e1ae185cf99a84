package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

func TestExportImportPreservesFields(t *testing.T) {
	due := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	done := time.Date(2024, 3, 6, 16, 30, 0, 0, time.UTC)
	created := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{
			ID: "a1", Title: "Review pull requests", Priority: model.PriorityHigh,
			Due: &due, HasTime: true, Tags: []string{"work", "code"},
			Recurring: &model.Recurrence{Pattern: model.PatternWeekly, Interval: 1},
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "b2", Title: "Buy milk", Priority: model.PriorityLow, Tags: []string{},
			Completed: true, CompletedAt: &done, ParentID: "a0",
			CreatedAt: created, UpdatedAt: done,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, tasks))
	assert.Contains(t, buf.String(), "- [ ] Review pull requests")
	assert.Contains(t, buf.String(), "- [x] Buy milk")

	got, err := Import(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, "Review pull requests", first.Title)
	assert.Equal(t, model.PriorityHigh, first.Priority)
	require.NotNil(t, first.Due)
	assert.True(t, due.Equal(*first.Due))
	assert.True(t, first.HasTime)
	assert.Equal(t, []string{"work", "code"}, first.Tags)
	assert.Equal(t, tasks[0].Recurring, first.Recurring)
	assert.True(t, created.Equal(first.CreatedAt))
	assert.False(t, first.Completed)

	second := got[1]
	assert.True(t, second.Completed)
	require.NotNil(t, second.CompletedAt)
	assert.True(t, done.Equal(*second.CompletedAt))
	assert.Equal(t, "a0", second.ParentID)
	assert.Nil(t, second.Due)
	assert.Equal(t, []string{}, second.Tags)
}

func TestImportTitleFromBodyAndMissingID(t *testing.T) {
	doc := strings.Join([]string{
		"---",
		"priority: medium",
		"tags: [home]",
		"---",
		"",
		"- [ ] Water the plants",
		"",
	}, "\n")
	got, err := Import(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].ID)
	assert.Equal(t, "Water the plants", got[0].Title)
	assert.Equal(t, []string{"home"}, got[0].Tags)
}

func TestImportErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed": "---\ntitle: x\n",
		"no title": "---\nid: z\n---\nplain text\n",
		"bad yaml": "---\ntitle: [unterminated\n---\n",
		"preamble": "hello\n---\ntitle: x\n---\n",
	}
	for name, doc := range cases {
		_, err := Import(strings.NewReader(doc))
		assert.Error(t, err, name)
	}
}

func TestImportEmpty(t *testing.T) {
	got, err := Import(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
