// Package insights provides the insights tab: streaks, flow, rankings and
// long-range patterns derived from the stored counters.
package insights

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/typesteps/typesteps/internal/app"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services"
)

const (
	topLimit      = 5
	flowWindowMin = 30
)

// keyMap defines the key bindings specific to the insights tab.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// defaultKeyMap returns the default key bindings for the insights tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
	}
}

// snapshot is everything the tab renders, read in one pass.
type snapshot struct {
	AllTime        int
	Streak         int
	Badge          models.Badge
	InFlow         bool
	KPM            int
	RecentMinutes  []models.ChartPoint
	PeakHour       models.HourCount
	AveragePerHour float64
	BestDay        models.DayCount
	QuietestDay    *models.DayCount
	BestThisWeek   *models.DayCount
	TopApps        []models.RankedEntry
	TopProjects    []models.RankedEntry
	Categories     []models.CategoryCount
	Library        []models.LibraryProgress
	SixMonths      []models.ChartPoint
	Hourly         []models.ChartPoint
}

// HasData reports whether anything was ever counted.
func (s *snapshot) HasData() bool {
	return s != nil && s.AllTime > 0
}

// insightsLoadedMsg is sent when the snapshot is ready.
type insightsLoadedMsg struct {
	data *snapshot
}

// insightsErrorMsg is sent when the snapshot cannot be read.
type insightsErrorMsg struct {
	err string
}

// Model represents the insights tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	data        *snapshot
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new insights model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		loading:  true,
	}
}

// Init initializes the insights tab.
func (m *Model) Init() tea.Cmd {
	return m.loadInsightsCmd()
}

// loadInsightsCmd creates a command to read the snapshot.
func (m *Model) loadInsightsCmd() tea.Cmd {
	svc := m.services
	return func() tea.Msg {
		if svc == nil {
			return insightsErrorMsg{err: "Services not initialized"}
		}

		e := svc.Analytics()
		return insightsLoadedMsg{data: &snapshot{
			AllTime:        e.TotalAllTime(),
			Streak:         e.CurrentStreak(),
			Badge:          e.ProductivityBadge(),
			InFlow:         e.IsInFlow(),
			KPM:            e.CurrentKPM(),
			RecentMinutes:  e.RecentMinutes(flowWindowMin),
			PeakHour:       e.PeakHour(),
			AveragePerHour: e.AveragePerHour(),
			BestDay:        e.BestDay(),
			QuietestDay:    e.QuietestDay(),
			BestThisWeek:   e.MostActiveDayThisWeek(),
			TopApps:        e.TopApps(topLimit),
			TopProjects:    e.TopProjects(topLimit),
			Categories:     e.CategoryStats(),
			Library:        e.LibraryStats(),
			SixMonths:      e.LastSixMonths(),
			Hourly:         e.TodayHourly(),
		}}
	}
}

// Update handles messages for the insights tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case insightsLoadedMsg:
		m.data = msg.data
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case insightsErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  "Insights error: " + msg.err,
				Duration: app.LongNotificationDuration,
			}
		})

	case app.StatsUpdatedMsg:
		cmds = append(cmds, m.reload())

	case app.TabSwitchMsg:
		if msg.Tab == app.TabInsights {
			cmds = append(cmds, m.reload())
		}

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reload refreshes the snapshot. The previous one stays on screen meanwhile.
func (m *Model) reload() tea.Cmd {
	if m.data == nil {
		m.loading = true
	}
	return m.loadInsightsCmd()
}

// SetSize sets the available size for the insights tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Up,
		m.keys.Down,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.PageUp, m.keys.PageDown},
	}
}
