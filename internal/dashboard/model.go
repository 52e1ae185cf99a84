// Package dashboard provides the Bubble Tea task and streak dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/model"
	"github.com/gerrardelliot83-create/floe/internal/quickadd"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/stats"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

const (
	tabTasks = iota
	tabAgenda
	tabStreak
	tabStats
)

// ReloadMsg asks the dashboard to reload everything from the store.
type ReloadMsg struct{}

// Deps are the services the dashboard reads and writes through.
type Deps struct {
	Tasks  *service.Tasks
	Focus  *service.Focus
	Store  store.Store
	Logger logging.Logger
}

// Config holds the dashboard's view settings.
type Config struct {
	UserID      string
	Days        int
	CurveWindow int
	Now         func() time.Time
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	deps Deps
	cfg  Config
	now  func() time.Time

	tasks         []model.Task
	agenda        service.Agenda
	showCompleted bool
	summary       service.Summary
	report        stats.Report
	loadErr       string
	errMsg        string
	notice        string

	tabs      []string
	activeTab int
	table     table.Model
	viewports []viewport.Model
	input     textinput.Model
	adding    bool
	keys      KeyMap
	help      help.Model

	width  int
	height int
}

// NewModel constructs a dashboard and loads its data.
func NewModel(deps Deps, cfg Config) *Model {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m := &Model{
		deps: deps,
		cfg:  cfg,
		now:  now,
		tabs: []string{"Tasks", "Upcoming", "Streak", "Stats"},
		keys: DefaultKeyMap(),
		help: help.New(),
	}
	m.initInput()
	m.initTable()
	m.initViewports()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case ReloadMsg:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.moveTab(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Right):
		m.moveTab(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Add):
		return m.startAdding()
	case key.Matches(msg, m.keys.Reload):
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.ShowCompleted):
		m.showCompleted = !m.showCompleted
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Complete):
		if m.activeTab == tabTasks {
			m.completeSelected()
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if m.activeTab == tabTasks {
			m.deleteSelected()
		}
		return m, nil
	}
	if m.activeTab == tabTasks {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	vp := m.viewports[m.activeTab]
	var cmd tea.Cmd
	vp, cmd = vp.Update(msg)
	m.viewports[m.activeTab] = vp
	return m, cmd
}

func (m *Model) startAdding() (tea.Model, tea.Cmd) {
	m.activeTab = tabTasks
	m.adding = true
	m.errMsg = ""
	m.notice = ""
	m.input.SetValue("")
	m.table.Blur()
	return m, m.input.Focus()
}

func (m *Model) stopAdding() {
	m.adding = false
	m.input.Blur()
	m.input.SetValue("")
	m.table.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.stopAdding()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		m.stopAdding()
		return
	}
	req := service.QuickAddRequest{UserID: m.cfg.UserID, Text: text}
	task, _, err := m.deps.Tasks.AddQuick(context.Background(), req, m.now())
	if err != nil {
		if errors.Is(err, service.ErrEmptyTitle) {
			m.errMsg = "Task needs a title."
			return
		}
		m.deps.Logger.Errorf("failed to add task: %v", err)
		m.errMsg = "Failed to add task."
		return
	}
	m.notice = fmt.Sprintf("Added %q", task.Title)
	m.stopAdding()
	m.refresh()
}

func (m *Model) selected() (model.Task, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[idx], true
}

func (m *Model) completeSelected() {
	task, ok := m.selected()
	if !ok {
		return
	}
	now := m.now()
	done, next, err := m.deps.Tasks.Complete(context.Background(), task.ID, now)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyCompleted) {
			m.errMsg = "Task is already completed."
			return
		}
		m.deps.Logger.Errorf("failed to complete task %s: %v", task.ID, err)
		m.errMsg = "Failed to complete task."
		return
	}
	m.errMsg = ""
	m.notice = fmt.Sprintf("Completed %q", done.Title)
	if next != nil && next.Due != nil {
		m.notice += " · next due " + quickadd.DueLabel(*next.Due, next.HasTime, now)
	}
	m.refresh()
}

func (m *Model) deleteSelected() {
	task, ok := m.selected()
	if !ok {
		return
	}
	if err := m.deps.Tasks.Delete(context.Background(), task.ID); err != nil {
		m.deps.Logger.Errorf("failed to delete task %s: %v", task.ID, err)
		m.errMsg = "Failed to delete task."
		return
	}
	m.errMsg = ""
	m.notice = fmt.Sprintf("Deleted %q", task.Title)
	m.refresh()
}

func (m *Model) refresh() {
	ctx := context.Background()
	now := m.now()
	tasks, err := m.deps.Tasks.List(ctx, model.TaskFilter{UserID: m.cfg.UserID, ShowCompleted: m.showCompleted})
	if err != nil {
		m.fail("failed to load tasks", err)
		return
	}
	summary, err := m.deps.Focus.Summary(ctx, m.cfg.UserID, now)
	if err != nil {
		m.fail("failed to load streak", err)
		return
	}
	report, err := stats.BuildReport(ctx, m.deps.Store, model.StatsConfig{
		UserID:      m.cfg.UserID,
		Days:        m.cfg.Days,
		CurveWindow: m.cfg.CurveWindow,
	}, now)
	if err != nil {
		m.fail("failed to load stats", err)
		return
	}
	m.loadErr = ""
	m.tasks = tasks
	m.agenda = service.BuildAgenda(tasks, now, service.UpcomingDays)
	m.summary = summary
	m.report = report
	m.table.SetRows(taskRows(tasks, now))
	// The table parks its cursor at -1 while it has no rows.
	if len(tasks) > 0 {
		if cur := m.table.Cursor(); cur < 0 || cur >= len(tasks) {
			m.table.SetCursor(min(max(cur, 0), len(tasks)-1))
		}
	}
	m.renderTabContents()
}

func (m *Model) fail(what string, err error) {
	m.deps.Logger.Errorf("%s: %v", what, err)
	m.loadErr = what
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabTasks {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) initInput() {
	m.input = textinput.New()
	m.input.Prompt = "New task: "
	m.input.Placeholder = "Call John tomorrow at 2pm #work high priority"
	m.input.CharLimit = 0
}

func (m *Model) initTable() {
	m.table = table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.table.SetStyles(tableStyles())
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.status() != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.table.SetColumns(taskColumns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(1, bodyHeight-inputHeight))
	m.input.Width = max(10, m.width-lipgloss.Width(m.input.Prompt)-2)
	m.help.Width = m.width
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	now := m.now()
	today := model.DateOf(now)
	m.viewports[tabAgenda].SetContent(renderAgenda(m.agenda, now, width))
	m.viewports[tabStreak].SetContent(renderStreak(m.summary, today, width))
	m.viewports[tabStats].SetContent(renderStats(m.report, width))
}
