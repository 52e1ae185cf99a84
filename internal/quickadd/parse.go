// Package quickadd turns free-text quick-add input into task drafts.
package quickadd

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/schedule"
)

var (
	tagRe       = regexp.MustCompile(`#(\w+)`)
	priorityRe  = regexp.MustCompile(`(?i)\b(high|medium|low)\s*priority\b`)
	recurringRe = regexp.MustCompile(`(?i)\bevery\s+(day|daily|week|weekly|month|monthly|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	timeRe      = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	fillerRe    = regexp.MustCompile(`(?i)\b(at|on|in|by|due|deadline)\b`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

var dayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// datePattern resolves a matched date phrase against now.
type datePattern struct {
	re      *regexp.Regexp
	resolve func(now time.Time, groups []string) (time.Time, bool)
}

// datePatterns are tried in order; the first match wins.
var datePatterns = buildDatePatterns()

func buildDatePatterns() []datePattern {
	patterns := []datePattern{
		{regexp.MustCompile(`(?i)\btoday\b`), func(now time.Time, _ []string) (time.Time, bool) {
			return schedule.StartOfDay(now), true
		}},
		{regexp.MustCompile(`(?i)\btomorrow\b`), func(now time.Time, _ []string) (time.Time, bool) {
			return schedule.StartOfDay(now).AddDate(0, 0, 1), true
		}},
		{regexp.MustCompile(`(?i)\bnext\s+week\b`), func(now time.Time, _ []string) (time.Time, bool) {
			return schedule.StartOfDay(now).AddDate(0, 0, 7), true
		}},
		{regexp.MustCompile(`(?i)\bnext\s+month\b`), func(now time.Time, _ []string) (time.Time, bool) {
			return schedule.AddMonths(schedule.StartOfDay(now), 1), true
		}},
		{regexp.MustCompile(`(?i)\bin\s+(\d+)\s+days?\b`), func(now time.Time, g []string) (time.Time, bool) {
			n, err := strconv.Atoi(g[1])
			if err != nil {
				return time.Time{}, false
			}
			return schedule.StartOfDay(now).AddDate(0, 0, n), true
		}},
		{regexp.MustCompile(`(?i)\bin\s+(\d+)\s+weeks?\b`), func(now time.Time, g []string) (time.Time, bool) {
			n, err := strconv.Atoi(g[1])
			if err != nil {
				return time.Time{}, false
			}
			return schedule.StartOfDay(now).AddDate(0, 0, 7*n), true
		}},
		{regexp.MustCompile(`(?i)\bin\s+(\d+)\s+months?\b`), func(now time.Time, g []string) (time.Time, bool) {
			n, err := strconv.Atoi(g[1])
			if err != nil {
				return time.Time{}, false
			}
			return schedule.AddMonths(schedule.StartOfDay(now), n), true
		}},
	}
	for _, prefix := range []string{`\bon\s+`, `\b`} {
		for _, name := range dayNames {
			wd, _ := schedule.ParseWeekday(name)
			patterns = append(patterns, datePattern{
				re: regexp.MustCompile(`(?i)` + prefix + name + `\b`),
				resolve: func(now time.Time, _ []string) (time.Time, bool) {
					return schedule.NextWeekday(now, wd), true
				},
			})
		}
	}
	return patterns
}

// Parse extracts tags, priority, recurrence, due date and time from input.
// Unrecognized text is left in the title; now anchors relative dates.
func Parse(input string, now time.Time) model.Draft {
	draft := model.Draft{Tags: []string{}}
	text := input

	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		draft.Tags = append(draft.Tags, m[1])
	}
	text = tagRe.ReplaceAllString(text, "")

	if loc := priorityRe.FindStringSubmatchIndex(text); loc != nil {
		draft.Priority = model.Priority(strings.ToLower(text[loc[2]:loc[3]]))
		text = cut(text, loc[0], loc[1])
	}

	if loc := recurringRe.FindStringSubmatchIndex(text); loc != nil {
		word := strings.ToLower(text[loc[2]:loc[3]])
		switch word {
		case "day", "daily":
			draft.Recurring = &model.Recurrence{Pattern: model.PatternDaily, Interval: 1}
		case "week", "weekly":
			draft.Recurring = &model.Recurrence{Pattern: model.PatternWeekly, Interval: 1}
		case "month", "monthly":
			draft.Recurring = &model.Recurrence{Pattern: model.PatternMonthly, Interval: 1}
		default:
			draft.Recurring = &model.Recurrence{Pattern: model.PatternWeekly, Interval: 1}
			if wd, ok := schedule.ParseWeekday(word); ok {
				due := schedule.NextWeekday(now, wd)
				draft.Due = &due
			}
		}
		text = cut(text, loc[0], loc[1])
	}

	if draft.Due == nil {
		text = extractDate(text, now, &draft)
	}

	text = extractTime(text, &draft)

	text = fillerRe.ReplaceAllString(text, "")
	draft.Title = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	return draft
}

func extractDate(text string, now time.Time, draft *model.Draft) string {
	for _, p := range datePatterns {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		due, ok := p.resolve(now, submatches(text, loc))
		if !ok {
			continue
		}
		draft.Due = &due
		return cut(text, loc[0], loc[1])
	}
	return text
}

// extractTime removes the first valid time-of-day token and applies it to
// the due date. Without a due date the token is dropped.
func extractTime(text string, draft *model.Draft) string {
	for _, loc := range timeRe.FindAllStringSubmatchIndex(text, -1) {
		g := submatches(text, loc)
		hour, minute, ok := clock(g[1], g[2], strings.ToLower(g[3]))
		if !ok {
			continue
		}
		if draft.Due != nil {
			d := *draft.Due
			due := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
			draft.Due = &due
			draft.HasTime = true
		}
		return cut(text, loc[0], loc[1])
	}
	return text
}

func clock(hourStr, minuteStr, meridiem string) (int, int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false
	}
	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if meridiem == "pm" && hour < 12 {
			hour += 12
		} else if meridiem == "am" && hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func cut(text string, start, end int) string {
	return text[:start] + text[end:]
}
