package dashboard

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/typesteps/typesteps/internal/app"
	"github.com/typesteps/typesteps/internal/config"
	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services"
)

var testNow = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

type silentNotifier struct{}

func (silentNotifier) Notify(string, string) error { return nil }

func openTestManager(t *testing.T) *services.Manager {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:            filepath.Join(tmpDir, "test.db"),
		Location:                time.UTC,
		WakaTimeRefreshInterval: time.Hour,
	}
	mgr, err := services.Open(cfg,
		services.WithClock(func() time.Time { return testNow }),
		services.WithNotifier(silentNotifier{}),
	)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	for range 600 {
		if _, err := mgr.Ingest(models.KeystrokeEvent{Timestamp: testNow, AppName: "Visual Studio Code"}); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}
	return mgr
}

func loadedState(mgr *services.Manager) *app.State {
	state := app.NewState()
	state.SetLoading("initial", false)
	if mgr != nil {
		state.SetSummary(mgr.Analytics().Summary())
		state.SetSettings(mgr.Settings())
	}
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.TimeRange() != models.TimeRangeDay {
		t.Errorf("TimeRange = %v, want Day", m.TimeRange())
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(), nil)

	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 24)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Loading statistics") {
		t.Errorf("initial view should show the spinner: %q", view)
	}
}

func TestModel_ViewWithData(t *testing.T) {
	mgr := openTestManager(t)
	m := New(loadedState(mgr), mgr)
	m.SetSize(120, 60)

	msg := m.loadSeriesCmd()()
	m.Update(msg)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Daily Goal", "600 / 5,000", "4,400 to go", "Today by Hour"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ToggleRange(t *testing.T) {
	mgr := openTestManager(t)
	m := New(loadedState(mgr), mgr)
	m.SetSize(120, 60)

	tests := []struct {
		want   models.TimeRange
		points int
		title  string
	}{
		{models.TimeRangeWeek, 7, "Last 7 Days"},
		{models.TimeRangeMonth, 30, "Last 30 Days"},
		{models.TimeRangeDay, 24, "Today by Hour"},
	}

	for _, tt := range tests {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
		if m.TimeRange() != tt.want {
			t.Fatalf("TimeRange = %v, want %v", m.TimeRange(), tt.want)
		}
		if cmd == nil {
			t.Fatal("toggle should load the new series")
		}

		m.Update(m.loadSeriesCmd()())
		if len(m.series) != tt.points {
			t.Errorf("%v series = %d points, want %d", tt.want, len(m.series), tt.points)
		}
		if view := ansi.Strip(m.View()); !strings.Contains(view, tt.title) {
			t.Errorf("view missing %q", tt.title)
		}
	}
}

func TestModel_IgnoresStaleSeries(t *testing.T) {
	m := New(loadedState(nil), nil)
	m.Update(seriesLoadedMsg{timeRange: models.TimeRangeMonth, points: make([]models.ChartPoint, 30)})
	if m.series != nil {
		t.Error("series for another range should be dropped")
	}
}

func TestModel_StatsUpdated(t *testing.T) {
	mgr := openTestManager(t)
	state := loadedState(mgr)
	m := New(state, mgr)

	_, cmd := m.Update(app.StatsUpdatedMsg{Today: 600})
	if cmd == nil {
		t.Error("stats update should animate the bar and reload the chart")
	}
	if got := m.goalBar.Fraction(); got != 0.12 {
		t.Errorf("goal fraction = %v, want 0.12", got)
	}
}

func TestModel_TabSwitch(t *testing.T) {
	m := New(loadedState(nil), nil)
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabSettings}); cmd != nil {
		t.Error("switching to another tab should not reload")
	}
}

func TestModel_GoalReached(t *testing.T) {
	state := loadedState(nil)
	state.SetSummary(models.Summary{Today: 6000, Goal: 5000, GoalProgress: 1.2})
	m := New(state, nil)
	m.SetSize(100, 40)

	if view := ansi.Strip(m.View()); !strings.Contains(view, "Goal reached") {
		t.Error("view should celebrate a reached goal")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) != 3 {
		t.Errorf("ShortHelp = %d bindings", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
