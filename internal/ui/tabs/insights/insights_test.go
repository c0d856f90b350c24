package insights

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
	return mgr
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if !m.loading {
		t.Error("tab should start loading")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(), nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_NoServices(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(80, 24)

	msg := m.loadInsightsCmd()()
	if _, ok := msg.(insightsErrorMsg); !ok {
		t.Fatalf("expected insightsErrorMsg, got %T", msg)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("error should raise a notification")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Services not initialized") {
		t.Errorf("view should show the error: %q", view)
	}
}

func TestModel_Empty(t *testing.T) {
	mgr := openTestManager(t)
	m := New(app.NewState(), mgr)
	m.SetSize(80, 24)

	m.Update(m.loadInsightsCmd()())
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Nothing counted yet") {
		t.Errorf("empty store should render the empty state: %q", view)
	}
}

func TestModel_WithData(t *testing.T) {
	mgr := openTestManager(t)
	events := []models.KeystrokeEvent{
		{Timestamp: testNow, AppName: "Visual Studio Code", ProjectName: "typesteps"},
		{Timestamp: testNow, AppName: "Slack"},
		{Timestamp: testNow.Add(-24 * time.Hour), AppName: "Terminal"},
	}
	for _, e := range events {
		for range 10 {
			if _, err := mgr.Ingest(e); err != nil {
				t.Fatalf("Ingest failed: %v", err)
			}
		}
	}

	m := New(app.NewState(), mgr)
	m.SetSize(120, 400)
	m.Update(m.loadInsightsCmd()())

	if m.loading || !m.data.HasData() {
		t.Fatal("snapshot should be loaded")
	}
	if m.data.AllTime != 30 {
		t.Errorf("AllTime = %d, want 30", m.data.AllTime)
	}
	if m.data.Streak != 2 {
		t.Errorf("Streak = %d, want 2", m.data.Streak)
	}

	view := ansi.Strip(m.View())
	for _, want := range []string{"Insights", "2 day streak", "Top Applications", "Visual Studio Code", "typesteps", "Records", "Library Equivalents", "Last 6 Months", "Today by Hour", "10:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ReloadTriggers(t *testing.T) {
	m := New(app.NewState(), nil)

	if _, cmd := m.Update(app.StatsUpdatedMsg{Today: 1}); cmd == nil {
		t.Error("stats update should reload")
	}
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabInsights}); cmd == nil {
		t.Error("switching to insights should reload")
	}
	if _, cmd := m.Update(app.TabSwitchMsg{Tab: app.TabDashboard}); cmd != nil {
		t.Error("switching elsewhere should not reload")
	}
}

func TestModel_ReloadKeepsPreviousSnapshot(t *testing.T) {
	m := New(app.NewState(), nil)
	m.Update(insightsLoadedMsg{data: &snapshot{AllTime: 5}})
	m.reload()
	if m.loading {
		t.Error("reload with data on screen should not show the loading state")
	}
}

func TestModel_Scroll(t *testing.T) {
	m := New(app.NewState(), nil)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestDayValue(t *testing.T) {
	if got := dayValue(nil); got != "—" {
		t.Errorf("nil day = %q", got)
	}
	if got := dayValue(&models.DayCount{Day: "2026-03-04", Count: 1234}); got != "2026-03-04 (1,234)" {
		t.Errorf("day = %q", got)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help should list scroll keys")
	}
}
