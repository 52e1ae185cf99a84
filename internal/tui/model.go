// Package tui provides the Bubble Tea focus timer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quotes"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/timer"
)

const (
	tickInterval = time.Second
	maxBarWidth  = 60
	maxTextWidth = 64
)

// FocusRecorder persists finished phases. *service.Focus implements it.
type FocusRecorder interface {
	Complete(ctx context.Context, req service.SessionRequest) (service.Outcome, error)
	LogBreak(ctx context.Context, req service.SessionRequest) error
	Summary(ctx context.Context, userID string, now time.Time) (service.Summary, error)
}

// Options configures a timer model.
type Options struct {
	UserID    string
	TaskID    string
	TaskTitle string
	Preset    model.Preset
	Quotes    []quotes.Quote
	Logger    logging.Logger
	Now       func() time.Time
}

type tickMsg time.Time

type quoteMsg struct{}

type summaryMsg struct {
	summary service.Summary
	err     error
}

type savedMsg struct {
	outcome service.Outcome
	err     error
}

type breakSavedMsg struct {
	err error
}

// Model implements the Bubble Tea timer UI.
type Model struct {
	focus     FocusRecorder
	logger    logging.Logger
	now       func() time.Time
	userID    string
	taskID    string
	taskTitle string

	timer    *timer.Timer
	lastTick time.Time
	bar      progress.Model
	help     help.Model
	keys     KeyMap
	picker   *quotes.Picker
	quote    quotes.Quote

	summary    service.Summary
	hasSummary bool
	notice     string
	errMsg     string

	width  int
	height int
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	breakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB3B3")).Bold(true)
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 0)
	quoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF7F"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a timer model.
func NewModel(focus FocusRecorder, opts Options) *Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	picker := quotes.NewPicker(opts.Quotes)
	return &Model{
		focus:     focus,
		logger:    logger,
		now:       now,
		userID:    opts.UserID,
		taskID:    opts.TaskID,
		taskTitle: opts.TaskTitle,
		timer:     timer.New(opts.Preset),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		keys:      DefaultKeyMap(),
		picker:    picker,
		quote:     picker.Next(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), rotateQuote(), m.loadSummary())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-4))
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		now := time.Time(msg)
		cmds := m.advance(now)
		return m, tea.Batch(append(cmds, tick())...)
	case quoteMsg:
		m.quote = m.picker.Next()
		return m, rotateQuote()
	case summaryMsg:
		if msg.err != nil {
			m.logger.Errorf("failed to load streak: %v", msg.err)
			m.errMsg = "Could not load streak."
			return m, nil
		}
		m.summary = msg.summary
		m.hasSummary = true
		return m, nil
	case savedMsg:
		m.applySaved(msg)
		return m, nil
	case breakSavedMsg:
		if msg.err != nil {
			m.logger.Warnf("failed to save break: %v", msg.err)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.timer.State() != timer.Running {
			m.lastTick = m.now()
			m.notice = ""
		}
		m.timer.Toggle()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset()
		m.notice = ""
		return m, nil
	case key.Matches(msg, m.keys.Quote):
		m.quote = m.picker.Next()
		return m, nil
	}
	return m, nil
}

// advance moves the timer to now and returns the commands that persist any
// phases that ended.
func (m *Model) advance(now time.Time) []tea.Cmd {
	elapsed := now.Sub(m.lastTick)
	m.lastTick = now
	return m.handleEvents(m.timer.Tick(elapsed), now)
}

func (m *Model) handleEvents(events []timer.Event, now time.Time) []tea.Cmd {
	var cmds []tea.Cmd
	breakMinutes := m.timer.Preset().BreakMinutes
	for _, ev := range events {
		switch ev := ev.(type) {
		case timer.FocusCompleted:
			m.notice = fmt.Sprintf("Focus round %d complete. Take a break.", ev.Round)
			cmds = append(cmds, m.saveFocus(ev.Minutes, now))
		case timer.BreakCompleted:
			m.notice = fmt.Sprintf("Break over. Round %d is ready.", ev.Round+1)
			cmds = append(cmds, m.saveBreak(breakMinutes, now))
		case timer.CycleCompleted:
			m.notice = fmt.Sprintf("Cycle complete! %d rounds done.", ev.Rounds)
			cmds = append(cmds, m.saveBreak(breakMinutes, now))
		}
	}
	return cmds
}

func (m *Model) applySaved(msg savedMsg) {
	if msg.err != nil {
		m.logger.Errorf("failed to save focus session: %v", msg.err)
		m.errMsg = "Session could not be saved."
		return
	}
	m.errMsg = ""
	m.summary = msg.outcome.Summary
	m.hasSummary = true
	if len(msg.outcome.Unlocked) > 0 {
		names := make([]string, 0, len(msg.outcome.Unlocked))
		for _, a := range msg.outcome.Unlocked {
			names = append(names, a.Icon+" "+a.Title)
		}
		m.notice += " Unlocked: " + strings.Join(names, ", ")
	}
	m.logger.Infof("focus session %s saved (%d min)", msg.outcome.Session.ID, msg.outcome.Session.Minutes)
}

func (m *Model) saveFocus(minutes int, endedAt time.Time) tea.Cmd {
	req := service.SessionRequest{UserID: m.userID, Minutes: minutes, TaskID: m.taskID, EndedAt: endedAt}
	return func() tea.Msg {
		out, err := m.focus.Complete(context.Background(), req)
		return savedMsg{outcome: out, err: err}
	}
}

func (m *Model) saveBreak(minutes int, endedAt time.Time) tea.Cmd {
	req := service.SessionRequest{
		UserID:    m.userID,
		Minutes:   minutes,
		TaskID:    m.taskID,
		StartedAt: endedAt.Add(-time.Duration(minutes) * time.Minute),
		EndedAt:   endedAt,
	}
	return func() tea.Msg {
		return breakSavedMsg{err: m.focus.LogBreak(context.Background(), req)}
	}
}

func (m *Model) loadSummary() tea.Cmd {
	userID, now := m.userID, m.now()
	return func() tea.Msg {
		s, err := m.focus.Summary(context.Background(), userID, now)
		return summaryMsg{summary: s, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func rotateQuote() tea.Cmd {
	return tea.Tick(quotes.RotateEvery, func(time.Time) tea.Msg {
		return quoteMsg{}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBody() string {
	preset := m.timer.Preset()
	phaseStyle := focusStyle
	if m.timer.Phase() == timer.PhaseBreak {
		phaseStyle = breakStyle
	}
	status := m.timer.Phase().String()
	if m.timer.State() == timer.Paused {
		status += " (paused)"
	}

	textWidth := maxTextWidth
	if m.width > 0 {
		textWidth = min(maxTextWidth, max(10, m.width-4))
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s (%s)", preset.Name, preset.Key)),
		phaseStyle.Render(fmt.Sprintf("Round %d/%d · %s", m.timer.Round(), preset.Rounds, status)),
		clockStyle.Render(timer.FormatRemaining(m.timer.Remaining())),
		m.bar.ViewAs(m.timer.Fraction()),
		"",
	}
	if m.taskTitle != "" {
		lines = append(lines, "Working on: "+m.taskTitle, "")
	}
	lines = append(lines, quoteStyle.Render(wrapText(m.quote.String(), textWidth)), "")
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(wrapText(m.notice, textWidth)))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	if !m.hasSummary {
		return ""
	}
	rec := m.summary.Record
	level := m.summary.Level
	segments := []string{
		m.summary.Status.Message,
		fmt.Sprintf("Streak %d · Best %d", rec.CurrentStreak, rec.LongestStreak),
		fmt.Sprintf("Level %d %s", level.Level, level.Title),
		fmt.Sprintf("Sessions %d · %dm", rec.TotalSessions, rec.TotalFocusMinutes),
	}
	if today := m.summary.Today; today.Goal > 0 {
		segments = append(segments, fmt.Sprintf("Today %d/%d", today.Sessions, today.Goal))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
