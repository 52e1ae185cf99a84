package dashboard

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quickadd"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/stats"
)

const (
	inputHeight    = 2
	minTitleWidth  = 10
	idColWidth     = model.ShortIDLen
	priColWidth    = 4
	dueColWidth    = 16
	tagsColWidth   = 16
	repeatColWidth = 14
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF7F"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	rec := m.summary.Record
	open := 0
	for _, t := range m.tasks {
		if !t.Completed {
			open++
		}
	}
	summary := fmt.Sprintf("User: %s  Streak: %d  Level: %d %s  Open tasks: %d",
		m.cfg.UserID, rec.CurrentStreak, m.summary.Level.Level, m.summary.Level.Title, open)
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(summary, m.width)), m.width)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab != tabTasks {
		return fitLines(m.viewports[m.activeTab].View(), m.width, height)
	}
	var view string
	if len(m.tasks) == 0 {
		view = "No tasks. Press n to add one."
	} else {
		view = m.table.View()
	}
	view = fitLines(view, m.width, max(1, height-inputHeight))
	return view + "\n" + m.renderInput()
}

func (m *Model) renderInput() string {
	if !m.adding {
		return "\n"
	}
	now := m.now()
	preview := ""
	if strings.TrimSpace(m.input.Value()) != "" {
		preview = quickadd.Preview(quickadd.Parse(m.input.Value(), now), now)
	}
	return m.input.View() + "\n" + previewStyle.Render(truncateLine(preview, m.width))
}

func (m *Model) status() string {
	switch {
	case m.loadErr != "":
		return errorStyle.Render(m.loadErr)
	case m.errMsg != "":
		return errorStyle.Render(m.errMsg)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) renderFooter() string {
	var helpLine string
	if m.adding {
		helpLine = m.help.View(inputKeys{submit: m.keys.Submit, cancel: m.keys.Cancel})
	} else {
		helpLine = m.help.View(m.keys)
	}
	if status := m.status(); status != "" {
		return helpLine + "\n" + status
	}
	return helpLine
}

func taskColumns(width int) []table.Column {
	fixed := idColWidth + priColWidth + dueColWidth + tagsColWidth + repeatColWidth
	// Each column carries one cell of right padding.
	titleWidth := width - fixed - 6
	if titleWidth < minTitleWidth {
		titleWidth = minTitleWidth
	}
	return []table.Column{
		{Title: "ID", Width: idColWidth},
		{Title: "Pri", Width: priColWidth},
		{Title: "Title", Width: titleWidth},
		{Title: "Due", Width: dueColWidth},
		{Title: "Tags", Width: tagsColWidth},
		{Title: "Repeat", Width: repeatColWidth},
	}
}

func taskRows(tasks []model.Task, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		title := t.Title
		if t.Completed {
			title = "✓ " + title
		}
		due := ""
		if t.Due != nil {
			due = quickadd.DueLabel(*t.Due, t.HasTime, now)
			if t.Overdue(now) {
				due = "! " + due
			}
		}
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = "#" + tag
		}
		repeat := ""
		if t.Recurring != nil {
			repeat = quickadd.RecurrenceLabel(*t.Recurring)
		}
		rows = append(rows, table.Row{
			t.ShortID(),
			priorityMark(t.Priority),
			title,
			due,
			strings.Join(tags, " "),
			repeat,
		})
	}
	return rows
}

func priorityMark(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!!"
	case model.PriorityLow:
		return "!"
	}
	return ""
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderStreak(s service.Summary, today model.Date, width int) string {
	rec := s.Record
	next := "max"
	if s.Level.NextAt > 0 {
		next = fmt.Sprintf("%d/%d", rec.TotalSessions, s.Level.NextAt)
	}
	cards := []string{
		metricCard("Current streak", fmt.Sprintf("%d days", rec.CurrentStreak)),
		metricCard("Longest streak", fmt.Sprintf("%d days", rec.LongestStreak)),
		metricCard("Level", fmt.Sprintf("%d %s (%s)", s.Level.Level, s.Level.Title, next)),
		metricCard("Today", s.Today.String()),
		metricCard("Focus time", stats.FormatMinutes(rec.TotalFocusMinutes)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if lipgloss.Width(row) > width {
		row = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	var buf bytes.Buffer
	if err := stats.RenderStreak(&buf, rec, today); err != nil {
		return fmt.Sprintf("Failed to render streak: %v", err)
	}
	return row + "\n\n" + strings.TrimRight(buf.String(), "\n")
}

func renderAgenda(a service.Agenda, now time.Time, width int) string {
	if a.Empty() {
		return fmt.Sprintf("Nothing due in the next %d days.", service.UpcomingDays)
	}
	var lines []string
	section := func(heading string, tasks []model.Task) {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, cardTitleStyle.Render(heading))
		for _, t := range tasks {
			line := fmt.Sprintf("%-3s %s", priorityMark(t.Priority), t.Title)
			if t.HasTime {
				line += " · " + t.Due.In(now.Location()).Format("15:04")
			}
			if len(t.Tags) > 0 {
				line += " · #" + strings.Join(t.Tags, " #")
			}
			lines = append(lines, truncateLine("  "+line, width))
		}
	}
	if len(a.Overdue) > 0 {
		section("Overdue", a.Overdue)
	}
	for _, day := range a.Days {
		section(quickadd.DueLabel(day.Date.In(now.Location()), false, now), day.Tasks)
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderStats(r stats.Report, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, r.Days, r.Window); err != nil {
		return fmt.Sprintf("Failed to render stats: %v", err)
	}
	if err := stats.RenderFocusChart(&buf, r.Days, r.Window, width, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	if err := stats.RenderTasks(&buf, r.Tasks, r.Now, r.From); err != nil {
		return fmt.Sprintf("Failed to render tasks: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
