package quickadd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

var (
	// 2024-03-05 is a Tuesday.
	tuesday   = time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)
	wednesday = time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC)
)

func day(y int, m time.Month, d, hour, minute int) time.Time {
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}

func TestParseTomorrowWithTime(t *testing.T) {
	d := Parse("Call John tomorrow at 2pm", tuesday)

	assert.Equal(t, "Call John", d.Title)
	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 6, 14, 0), *d.Due)
	assert.True(t, d.HasTime)
	assert.Equal(t, model.PriorityNone, d.Priority)
	assert.Empty(t, d.Tags)
	assert.Nil(t, d.Recurring)
}

func TestParsePriorityAndTag(t *testing.T) {
	d := Parse("Review PR high priority #dev", tuesday)

	assert.Equal(t, "Review PR", d.Title)
	assert.Equal(t, model.PriorityHigh, d.Priority)
	assert.Equal(t, []string{"dev"}, d.Tags)
	assert.Nil(t, d.Due)
}

func TestParseWeekdayRecurrence(t *testing.T) {
	d := Parse("Weekly team meeting every Monday", wednesday)

	require.NotNil(t, d.Recurring)
	assert.Equal(t, model.Recurrence{Pattern: model.PatternWeekly, Interval: 1}, *d.Recurring)
	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 11, 0, 0), *d.Due)
	assert.False(t, d.HasTime)
	// Only "every" starts a recurrence; the leading "Weekly" is title text.
	assert.Equal(t, "Weekly team meeting", d.Title)
}

func TestParseWeekdayRecurrenceWithTime(t *testing.T) {
	d := Parse("Standup every Friday at 9:30am", tuesday)

	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 8, 9, 30), *d.Due)
	assert.Equal(t, "Standup", d.Title)
}

func TestParseSingleTag(t *testing.T) {
	inputs := map[string]string{
		"buy milk #errands":       "errands",
		"#home clean the kitchen": "home",
		"fix bug #b42 now":        "b42",
	}
	for input, tag := range inputs {
		d := Parse(input, tuesday)
		assert.Equal(t, []string{tag}, d.Tags, input)
		assert.NotContains(t, d.Title, "#"+tag, input)
	}
}

func TestParseMultipleTagsInOrder(t *testing.T) {
	d := Parse("Plan sprint #work#planning notes #q2", tuesday)

	assert.Equal(t, []string{"work", "planning", "q2"}, d.Tags)
	assert.Equal(t, "Plan sprint notes", d.Title)
}

func TestParseNoTokens(t *testing.T) {
	d := Parse("   just a plain note  ", tuesday)

	assert.Equal(t, "just a plain note", d.Title)
	assert.Nil(t, d.Due)
	assert.Nil(t, d.Recurring)
	assert.Equal(t, model.PriorityNone, d.Priority)
	assert.NotNil(t, d.Tags)
	assert.Empty(t, d.Tags)
}

func TestParseEmpty(t *testing.T) {
	d := Parse("", tuesday)
	assert.Equal(t, "", d.Title)
	assert.Empty(t, d.Tags)
	assert.Nil(t, d.Due)
}

func TestParsePriorityAfterDate(t *testing.T) {
	d := Parse("Submit report by Friday #work high priority", tuesday)

	assert.Equal(t, "Submit report", d.Title)
	assert.Equal(t, model.PriorityHigh, d.Priority)
	assert.Equal(t, []string{"work"}, d.Tags)
	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 8, 0, 0), *d.Due)
}

func TestParseGenericRecurrenceKeepsDate(t *testing.T) {
	d := Parse("Water plants every week tomorrow", tuesday)

	require.NotNil(t, d.Recurring)
	assert.Equal(t, model.PatternWeekly, d.Recurring.Pattern)
	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 6, 0, 0), *d.Due)
	assert.Equal(t, "Water plants", d.Title)
}

func TestParseRecurrenceWords(t *testing.T) {
	cases := map[string]model.Pattern{
		"stretch every day":       model.PatternDaily,
		"journal every daily":     model.PatternDaily,
		"review every WEEKLY":     model.PatternWeekly,
		"pay rent every month":    model.PatternMonthly,
		"budget every monthly":    model.PatternMonthly,
		"backup every Sunday now": model.PatternWeekly,
	}
	for input, pattern := range cases {
		d := Parse(input, tuesday)
		require.NotNil(t, d.Recurring, input)
		assert.Equal(t, pattern, d.Recurring.Pattern, input)
		assert.Equal(t, 1, d.Recurring.Interval, input)
		assert.NotContains(t, d.Title, "every", input)
	}
}

func TestParseDanglingTimeIsDiscarded(t *testing.T) {
	d := Parse("Standup at 9am", tuesday)

	assert.Nil(t, d.Due)
	assert.False(t, d.HasTime)
	assert.Equal(t, "Standup", d.Title)
}

func TestParseMeridiemConversion(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"Deploy today at 12am", day(2024, 3, 5, 0, 0)},
		{"Lunch today 12pm", day(2024, 3, 5, 12, 0)},
		{"Dinner at 19:30 today", day(2024, 3, 5, 19, 30)},
		{"Gym tomorrow 7 PM", day(2024, 3, 6, 19, 0)},
		{"Call today 11:05am", day(2024, 3, 5, 11, 5)},
	}
	for _, tc := range cases {
		d := Parse(tc.input, tuesday)
		require.NotNil(t, d.Due, tc.input)
		assert.Equal(t, tc.want, *d.Due, tc.input)
		assert.True(t, d.HasTime, tc.input)
	}
}

func TestParseInvalidHourIsNotTime(t *testing.T) {
	d := Parse("Check 25 items tomorrow", tuesday)

	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 6, 0, 0), *d.Due)
	assert.False(t, d.HasTime)
	assert.Equal(t, "Check 25 items", d.Title)
}

func TestParseRelativeDates(t *testing.T) {
	cases := []struct {
		input string
		now   time.Time
		want  time.Time
		title string
	}{
		{"Renew passport today", tuesday, day(2024, 3, 5, 0, 0), "Renew passport"},
		{"Plan offsite next week", tuesday, day(2024, 3, 12, 0, 0), "Plan offsite"},
		{"Close books next month", day(2024, 1, 31, 9, 0), day(2024, 2, 29, 0, 0), "Close books"},
		{"Follow up in 3 days", tuesday, day(2024, 3, 8, 0, 0), "Follow up"},
		{"Follow up in 1 day", tuesday, day(2024, 3, 6, 0, 0), "Follow up"},
		{"Dentist in 2 weeks", tuesday, day(2024, 3, 19, 0, 0), "Dentist"},
		{"Review goals in 2 months", tuesday, day(2024, 5, 5, 0, 0), "Review goals"},
		{"Demo on Thursday", tuesday, day(2024, 3, 7, 0, 0), "Demo"},
		{"Retro on tuesday", tuesday, day(2024, 3, 12, 0, 0), "Retro"},
		{"Laundry saturday", tuesday, day(2024, 3, 9, 0, 0), "Laundry"},
	}
	for _, tc := range cases {
		d := Parse(tc.input, tc.now)
		require.NotNil(t, d.Due, tc.input)
		assert.Equal(t, tc.want, *d.Due, tc.input)
		assert.Equal(t, tc.title, d.Title, tc.input)
	}
}

func TestParseFirstDatePatternWins(t *testing.T) {
	d := Parse("Report tomorrow or today", tuesday)

	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 5, 0, 0), *d.Due)
	assert.Equal(t, "Report tomorrow or", d.Title)
}

func TestParseCaseInsensitive(t *testing.T) {
	d := Parse("Call mom TOMORROW HIGH PRIORITY", tuesday)

	assert.Equal(t, "Call mom", d.Title)
	assert.Equal(t, model.PriorityHigh, d.Priority)
	require.NotNil(t, d.Due)
	assert.Equal(t, day(2024, 3, 6, 0, 0), *d.Due)
}

func TestParseFillerWordsOnlyWhole(t *testing.T) {
	d := Parse("Login to inbox due deadline", tuesday)
	assert.Equal(t, "Login to inbox", d.Title)
}

func TestParseIsIdempotentOnTitle(t *testing.T) {
	inputs := []string{
		"Call John tomorrow at 2pm",
		"Review PR high priority #dev",
		"Weekly team meeting every Monday",
		"Submit report by Friday #work high priority",
		"Water plants every week tomorrow",
		"just a plain note",
	}
	for _, input := range inputs {
		first := Parse(input, tuesday)
		second := Parse(first.Title, tuesday)
		assert.Equal(t, first.Title, second.Title, input)
		assert.Nil(t, second.Due, input)
		assert.Nil(t, second.Recurring, input)
		assert.Empty(t, second.Tags, input)
		assert.Equal(t, model.PriorityNone, second.Priority, input)
	}
}

func TestParseKeepsNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2024, 3, 5, 23, 30, 0, 0, loc)

	d := Parse("Ship it tomorrow 8am", now)
	require.NotNil(t, d.Due)
	assert.Equal(t, time.Date(2024, 3, 6, 8, 0, 0, 0, loc), *d.Due)
}
