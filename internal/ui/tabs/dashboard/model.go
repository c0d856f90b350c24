// Package dashboard provides the main dashboard tab: today's progress toward
// the daily goal and the activity chart for the selected range.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/typesteps/typesteps/internal/app"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services"
	"github.com/typesteps/typesteps/internal/ui/components"
)

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle day/week/month"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// seriesLoadedMsg carries the chart series for one range.
type seriesLoadedMsg struct {
	timeRange models.TimeRange
	points    []models.ChartPoint
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	viewport viewport.Model
	spinner  components.LoadingSpinner
	goalBar  components.GoalBar

	timeRange models.TimeRange
	series    []models.ChartPoint

	width  int
	height int
}

// New creates a new dashboard model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		spinner:   components.NewSpinner("Loading statistics..."),
		goalBar:   components.NewGoalBar(40),
		timeRange: models.TimeRangeDay,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.loadSeriesCmd())
}

// loadSeriesCmd reads the series for the current range.
func (m *Model) loadSeriesCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	engine := m.services.Analytics()
	r := m.timeRange
	return func() tea.Msg {
		var points []models.ChartPoint
		switch r {
		case models.TimeRangeWeek:
			points = engine.LastSevenDays()
		case models.TimeRangeMonth:
			points = engine.LastThirtyDays()
		default:
			points = engine.TodayHourly()
		}
		return seriesLoadedMsg{timeRange: r, points: points}
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case seriesLoadedMsg:
		// A range toggle may have raced an older load.
		if msg.timeRange == m.timeRange {
			m.series = msg.points
		}

	case app.StatsUpdatedMsg:
		cmds = append(cmds, m.goalBar.SetProgress(m.state.GetSummary().GoalProgress), m.loadSeriesCmd())

	case app.SettingsChangedMsg:
		cmds = append(cmds, m.goalBar.SetProgress(m.state.GetSummary().GoalProgress))

	case app.TabSwitchMsg:
		if msg.Tab == app.TabDashboard {
			cmds = append(cmds, m.goalBar.SetProgress(m.state.GetSummary().GoalProgress), m.loadSeriesCmd())
		}

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.goalBar, cmd = m.goalBar.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.state.IsInitialLoading() && m.spinner.Active() {
		m.spinner.Stop()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ToggleRange) {
		m.timeRange = m.timeRange.Next()
		m.series = nil
		return m.loadSeriesCmd()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.goalBar.SetWidth(m.cardWidth() - 30)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// TimeRange returns the selected chart range.
func (m *Model) TimeRange() models.TimeRange {
	return m.timeRange
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Up,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
