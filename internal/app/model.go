// Package app implements the root Bubble Tea model: tab navigation, the
// service event loop and the toast stack.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/typesteps/typesteps/internal/services"
	"github.com/typesteps/typesteps/internal/services/wakatime"
	"github.com/typesteps/typesteps/internal/ui/styles"
)

// chromeHeight is the number of rows taken by the navbar and its padding.
const chromeHeight = 5

// Model is the root application model.
type Model struct {
	activeTab TabID
	tabs      []Tab

	state    *State
	services *services.Manager
	keymap   KeyMap
	styles   Styles
	spinner  spinner.Model

	width, height int
	showHelp      bool
	ready         bool
	now           func() time.Time

	eventChannel chan services.ServiceEvent
}

// NewModel creates the root model. mgr may be nil, in which case the model
// renders but every data request is a no-op.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabDashboard,
		tabs:      make([]Tab, tabCount),
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
		now:       time.Now,
	}
}

// SetTabs installs the tab implementations in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.ready {
		m.resizeTabs()
	}
}

// GetState returns the state shared with the tabs.
func (m *Model) GetState() *State {
	return m.state
}

// GetActiveTab returns the visible tab.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady reports whether the terminal size is known.
func (m *Model) IsReady() bool {
	return m.ready
}

func (m *Model) active() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

// Init starts the tick loop, subscribes to the services and loads the
// first summary.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{m.spinner.Tick, defaultTickCmd()}
	if m.services != nil {
		styles.ApplyTheme(m.services.Settings().Theme)
		cmds = append(cmds, subscribeToServicesCmd(m.services), loadInitialData(m.services))
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	return tea.Batch(cmds...)
}

// Update routes msg to the root handlers and then to the active tab.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := m.handle(msg)

	if tab := m.active(); tab != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handle(msg tea.Msg) []tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resizeTabs()
	case tea.KeyMsg:
		return []tea.Cmd{m.handleKeyMsg(msg)}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return []tea.Cmd{cmd}

	case TickMsg:
		return m.handleTick()
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		return []tea.Cmd{waitForServiceEventCmd(m.eventChannel)}
	case ServiceEventMsg:
		return m.handleServiceEventMsg(msg)
	case SummaryLoadedMsg:
		return []tea.Cmd{m.handleSummaryLoaded(msg)}
	case WakaTimeRefreshedMsg:
		return m.handleWakaTimeRefreshed(msg)
	case SettingsChangedMsg:
		m.applySettings(msg)

	case AdjustGoalMsg:
		return []tea.Cmd{m.withServices(func(mgr *services.Manager) tea.Cmd {
			return adjustGoalCmd(mgr, msg.Steps)
		})}
	case CycleThemeMsg:
		return []tea.Cmd{m.withServices(cycleThemeCmd)}
	case ExportMsg:
		return []tea.Cmd{m.handleExport(msg)}
	case ExportResultMsg:
		return []tea.Cmd{m.handleExportResult(msg)}
	case ResetMsg:
		return []tea.Cmd{m.withServices(resetCmd)}
	case ResetResultMsg:
		return m.handleResetResult(msg)
	case RefreshMsg:
		return m.handleRefresh(msg)

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			return []tea.Cmd{clearNotificationCmd(id, msg.Duration)}
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.startLoading(msg.Resource)
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)
	case ErrorMsg:
		return []tea.Cmd{notifyCmd(NotificationError, formatError(msg))}

	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.resizeTabs()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) withServices(build func(*services.Manager) tea.Cmd) tea.Cmd {
	if m.services == nil {
		return nil
	}
	return build(m.services)
}

func (m *Model) resizeTabs() {
	height := max(m.height-chromeHeight, 0)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, height)
		}
	}
}

// switchTab activates a tab and lets it know it became visible.
func (m *Model) switchTab(id TabID) tea.Cmd {
	m.activeTab = id
	m.resizeTabs()
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if id, ok := m.keymap.tabFor(msg); ok {
		return m.switchTab(id)
	}

	n := len(m.tabs)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false
	case key.Matches(msg, m.keymap.NextTab) && !m.showHelp && n > 0:
		return m.switchTab(TabID((int(m.activeTab) + 1) % n))
	case key.Matches(msg, m.keymap.PrevTab) && !m.showHelp && n > 0:
		return m.switchTab(TabID((int(m.activeTab) + n - 1) % n))
	case key.Matches(msg, m.keymap.Refresh) && m.services != nil:
		return func() tea.Msg { return RefreshMsg{Resource: "all"} }
	}
	return nil
}

// handleTick coalesces live keystrokes into one summary reload per tick.
func (m *Model) handleTick() []tea.Cmd {
	m.state.ClearExpiredNotifications()
	cmds := []tea.Cmd{defaultTickCmd()}
	if m.state.IsDirty() && m.services != nil {
		cmds = append(cmds, loadSummaryCmd(m.services))
	}
	return cmds
}

func (m *Model) startLoading(resource string) {
	m.state.SetLoading(resource, true)
	m.state.SetLoadingNotification("Refreshing...")
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	var cmds []tea.Cmd
	if msg.Resource == "all" || msg.Resource == "summary" {
		m.startLoading("summary")
		cmds = append(cmds, loadSummaryCmd(m.services))
	}
	if msg.Resource == "all" || msg.Resource == "wakatime" {
		m.startLoading("wakatime")
		cmds = append(cmds, refreshWakaTimeCmd(m.services))
	}
	return cmds
}

func (m *Model) handleSummaryLoaded(msg SummaryLoadedMsg) tea.Cmd {
	m.state.SetLoading("initial", false)
	m.state.SetSummary(msg.Summary)
	m.applySettings(SettingsChangedMsg{Settings: msg.Settings})
	m.stopLoading("summary")

	today := msg.Summary.Today
	return func() tea.Msg { return StatsUpdatedMsg{Today: today} }
}

// handleWakaTimeRefreshed toasts only for refreshes the user asked for;
// the initial status load is silent.
func (m *Model) handleWakaTimeRefreshed(msg WakaTimeRefreshedMsg) []tea.Cmd {
	requested := m.state.IsLoading("wakatime")
	m.stopLoading("wakatime")

	switch {
	case msg.Error == nil:
		m.state.SetWakaTime(msg.Status)
		if requested {
			return []tea.Cmd{notifyCmd(NotificationInfo, fmt.Sprintf("WakaTime: %.0f min coded today", msg.Status.Minutes))}
		}
	case errors.Is(msg.Error, wakatime.ErrNoAPIKey):
		m.state.SetWakaTime(msg.Status)
		return []tea.Cmd{notifyCmd(NotificationWarning, "WakaTime API key not set")}
	default:
		return []tea.Cmd{notifyCmd(NotificationError, fmt.Sprintf("WakaTime refresh failed: %v", msg.Error))}
	}
	return nil
}

func (m *Model) applySettings(msg SettingsChangedMsg) {
	m.state.SetSettings(msg.Settings)
	styles.ApplyTheme(msg.Settings.Theme)
}

// handleExport fills in a timestamped path next to the database when the
// request carries none.
func (m *Model) handleExport(msg ExportMsg) tea.Cmd {
	if m.services == nil {
		return nil
	}
	path := msg.Path
	if path == "" {
		dir := "."
		if cfg := m.services.Config(); cfg != nil && cfg.DatabasePath != "" {
			dir = filepath.Dir(cfg.DatabasePath)
		}
		path = DefaultExportPath(dir, msg.Format, m.now())
	}
	return exportCmd(m.services, msg.Format, path)
}

func (m *Model) handleExportResult(msg ExportResultMsg) tea.Cmd {
	if msg.Error != nil {
		return notifyCmd(NotificationError, msg.Error.Error())
	}
	what := "Backup"
	if msg.Format == "csv" {
		what = "Daily CSV"
	}
	return notifyCmd(NotificationSuccess, fmt.Sprintf("%s written to %s", what, msg.Path))
}

func (m *Model) handleResetResult(msg ResetResultMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyCmd(NotificationError, fmt.Sprintf("reset failed: %v", msg.Error))}
	}
	return []tea.Cmd{
		notifyCmd(NotificationSuccess, "All statistics cleared"),
		m.withServices(loadSummaryCmd),
	}
}

// handleServiceEventMsg handles one event and re-arms the wait.
func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	cmds := []tea.Cmd{m.handleServiceEvent(msg.Event)}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.StatsChangedEvent:
		m.state.ApplyToday(e.Today)
	case services.MilestoneReachedEvent:
		m.state.ApplyToday(e.Reached.Count)
		return notifyCmd(NotificationSuccess, milestoneMessage(e.Reached.Fraction, e.Reached.Count))
	case services.WakaTimeUpdatedEvent:
		m.state.SetWakaTime(e.Status)
	case services.SettingsChangedEvent:
		m.applySettings(SettingsChangedMsg(e))
	case services.ErrorEvent:
		return notifyCmd(NotificationError, fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}
	return nil
}

func milestoneMessage(fraction float64, count int) string {
	if fraction >= 1 {
		return fmt.Sprintf("Daily goal reached: %s keystrokes", humanize.Comma(int64(count)))
	}
	return fmt.Sprintf("%.0f%% of daily goal: %s keystrokes", fraction*100, humanize.Comma(int64(count)))
}

func formatError(msg ErrorMsg) string {
	if msg.Context == "" {
		return msg.Error.Error()
	}
	return fmt.Sprintf("%s: %v", msg.Context, msg.Error)
}
