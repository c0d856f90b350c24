// Package settings provides the settings tab: daily goal, theme, WakaTime,
// data export and reset, plus build information.
package settings

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/typesteps/typesteps/internal/app"
	"github.com/typesteps/typesteps/internal/config"
)

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	GoalUp     key.Binding
	GoalDown   key.Binding
	Theme      key.Binding
	ExportJSON key.Binding
	ExportCSV  key.Binding
	WakaTime   key.Binding
	Reset      key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Up         key.Binding
	Down       key.Binding
}

// defaultKeyMap returns the default key bindings for the settings tab.
func defaultKeyMap() keyMap {
	return keyMap{
		GoalUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "raise goal"),
		),
		GoalDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "lower goal"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle theme"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export backup"),
		),
		ExportCSV: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "export csv"),
		),
		WakaTime: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "refresh wakatime"),
		),
		Reset: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "reset stats"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the settings tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	confirmingReset bool
}

// New creates a new settings model.
func New(state *app.State, cfg *config.Config) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TabSwitchMsg:
		// A dialog left open on another visit is stale.
		if msg.Tab == app.TabSettings {
			m.confirmingReset = false
		}
		return m, nil
	case tea.KeyMsg:
		if m.confirmingReset {
			return m, m.handleConfirmKey(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

// handleConfirmKey swallows every key except the confirm and cancel answers.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirmingReset = false
		return send(app.ResetMsg{})
	case key.Matches(msg, m.keys.Cancel):
		m.confirmingReset = false
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.GoalUp):
		return send(app.AdjustGoalMsg{Steps: 1})
	case key.Matches(msg, m.keys.GoalDown):
		return send(app.AdjustGoalMsg{Steps: -1})
	case key.Matches(msg, m.keys.Theme):
		return send(app.CycleThemeMsg{})
	case key.Matches(msg, m.keys.ExportJSON):
		return send(app.ExportMsg{Format: "json"})
	case key.Matches(msg, m.keys.ExportCSV):
		return send(app.ExportMsg{Format: "csv"})
	case key.Matches(msg, m.keys.WakaTime):
		return send(app.RefreshMsg{Resource: "wakatime"})
	case key.Matches(msg, m.keys.Reset):
		m.confirmingReset = true
		return nil
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// ConfirmingReset reports whether the reset dialog is open.
func (m *Model) ConfirmingReset() bool {
	return m.confirmingReset
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.confirmingReset {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.GoalUp,
		m.keys.GoalDown,
		m.keys.Theme,
		m.keys.ExportJSON,
		m.keys.ExportCSV,
		m.keys.WakaTime,
		m.keys.Reset,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.GoalUp, m.keys.GoalDown, m.keys.Theme},
		{m.keys.ExportJSON, m.keys.ExportCSV, m.keys.WakaTime},
		{m.keys.Reset, m.keys.Confirm, m.keys.Cancel},
		{m.keys.Up, m.keys.Down},
	}
}
