package db

import (
	"fmt"
	"testing"

	"github.com/typesteps/typesteps/internal/models"
)

func TestSaveIncrement(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	inc := models.Increment{
		Day:     "2026-03-02",
		Hour:    "2026-03-02-09",
		Minute:  "2026-03-02-09-15",
		App:     "Xcode",
		Bundle:  "com.apple.dt.Xcode",
		Project: "typesteps",
	}
	for range 3 {
		if err := db.SaveIncrement(inc); err != nil {
			t.Fatalf("SaveIncrement failed: %v", err)
		}
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	checks := []struct {
		name string
		got  int
	}{
		{"daily", state.Stats.Daily[inc.Day]},
		{"hourly", state.Stats.Hourly[inc.Hour]},
		{"minute", state.Stats.Minute[inc.Minute]},
		{"apps", state.Stats.Apps[inc.App]},
		{"projects", state.Stats.Projects[inc.Project]},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if c.got != 3 {
				t.Errorf("%s count = %d, want 3", c.name, c.got)
			}
		})
	}

	if got := state.Stats.AppBundles["Xcode"]; got != "com.apple.dt.Xcode" {
		t.Errorf("bundle = %q, want com.apple.dt.Xcode", got)
	}
}

func TestSaveIncrement_SkipsEmptyOptionals(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	err := db.SaveIncrement(models.Increment{
		Day:    "2026-03-02",
		Hour:   "2026-03-02-09",
		Minute: "2026-03-02-09-15",
	})
	if err != nil {
		t.Fatalf("SaveIncrement failed: %v", err)
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if len(state.Stats.Apps) != 0 || len(state.Stats.Projects) != 0 || len(state.Stats.AppBundles) != 0 {
		t.Errorf("expected no app/project rows, got %+v", state.Stats)
	}
}

func TestSaveIncrement_EvictsMinutes(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for _, minute := range []string{"2026-03-02-09-00", "2026-03-02-09-01"} {
		if err := db.SaveIncrement(models.Increment{Day: "2026-03-02", Hour: "2026-03-02-09", Minute: minute}); err != nil {
			t.Fatalf("SaveIncrement failed: %v", err)
		}
	}

	err := db.SaveIncrement(models.Increment{
		Day:     "2026-03-02",
		Hour:    "2026-03-02-09",
		Minute:  "2026-03-02-09-02",
		Evicted: []string{"2026-03-02-09-00"},
	})
	if err != nil {
		t.Fatalf("SaveIncrement failed: %v", err)
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if _, ok := state.Stats.Minute["2026-03-02-09-00"]; ok {
		t.Error("evicted minute bucket still present")
	}
	if len(state.Stats.Minute) != 2 {
		t.Errorf("minute rows = %d, want 2", len(state.Stats.Minute))
	}
}

func TestReplaceState(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.SaveIncrement(models.Increment{Day: "2020-01-01", Hour: "2020-01-01-00", Minute: "2020-01-01-00-00", App: "Old"}); err != nil {
		t.Fatalf("SaveIncrement failed: %v", err)
	}

	want := models.NewState()
	want.Stats.Daily["2026-01-01"] = 10
	want.Stats.Hourly["2026-01-01-09"] = 10
	want.Stats.Minute["2026-01-01-09-30"] = 10
	want.Stats.Apps["Slack"] = 10
	want.Stats.Projects["api"] = 4
	want.Stats.AppBundles["Slack"] = "com.tinyspeck.slackmacgap"
	want.Notified["2026-01-01"] = []float64{0.5, 1.0}
	want.Settings = models.Settings{DailyGoal: 8000, WakaTimeAPIKey: "waka_123", Theme: models.ThemeDark}

	if err := db.ReplaceState(want); err != nil {
		t.Fatalf("ReplaceState failed: %v", err)
	}

	got, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	if _, ok := got.Stats.Daily["2020-01-01"]; ok {
		t.Error("old daily entry survived replace")
	}
	if _, ok := got.Stats.Apps["Old"]; ok {
		t.Error("old app entry survived replace")
	}
	if got.Stats.Daily["2026-01-01"] != 10 || got.Stats.Projects["api"] != 4 {
		t.Errorf("unexpected stats after replace: %+v", got.Stats)
	}
	if fmt.Sprint(got.Notified["2026-01-01"]) != "[0.5 1]" {
		t.Errorf("notified = %v, want [0.5 1]", got.Notified["2026-01-01"])
	}
	if got.Settings != want.Settings {
		t.Errorf("settings = %+v, want %+v", got.Settings, want.Settings)
	}
}

func TestClearTracking_KeepsSettings(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	settings := models.Settings{DailyGoal: 9000, WakaTimeAPIKey: "key"}
	if err := db.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := db.SaveIncrement(models.Increment{Day: "2026-01-01", Hour: "2026-01-01-09", Minute: "2026-01-01-09-00", App: "Zed", Bundle: "dev.zed.Zed"}); err != nil {
		t.Fatalf("SaveIncrement failed: %v", err)
	}
	if err := db.AddNotifiedMilestone("2026-01-01", 1.0); err != nil {
		t.Fatalf("AddNotifiedMilestone failed: %v", err)
	}

	if err := db.ClearTracking(); err != nil {
		t.Fatalf("ClearTracking failed: %v", err)
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if !state.Stats.IsEmpty() {
		t.Errorf("stats not empty after clear: %+v", state.Stats)
	}
	if len(state.Notified) != 0 {
		t.Errorf("notified not empty after clear: %v", state.Notified)
	}
	if state.Settings != settings {
		t.Errorf("settings = %+v, want %+v", state.Settings, settings)
	}
}

func TestAddNotifiedMilestone_Idempotent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for range 2 {
		if err := db.AddNotifiedMilestone("2026-01-01", 1.0); err != nil {
			t.Fatalf("AddNotifiedMilestone failed: %v", err)
		}
	}

	notified, err := db.GetNotifiedMilestones()
	if err != nil {
		t.Fatalf("GetNotifiedMilestones failed: %v", err)
	}
	if len(notified["2026-01-01"]) != 1 {
		t.Errorf("expected one fraction, got %v", notified["2026-01-01"])
	}
}

func TestMigrate_TrimsMinuteStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for i := range models.MinuteRetention + 10 {
		key := fmt.Sprintf("2026-01-01-%02d-%02d", i/60, i%60)
		if err := db.SaveIncrement(models.Increment{Day: "2026-01-01", Hour: key[:13], Minute: key}); err != nil {
			t.Fatalf("SaveIncrement failed: %v", err)
		}
	}

	if err := db.trimMinuteStats(); err != nil {
		t.Fatalf("trimMinuteStats failed: %v", err)
	}

	state, err := db.LoadState()
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if len(state.Stats.Minute) != models.MinuteRetention {
		t.Errorf("minute rows = %d, want %d", len(state.Stats.Minute), models.MinuteRetention)
	}
	if _, ok := state.Stats.Minute["2026-01-01-00-00"]; ok {
		t.Error("oldest minute survived trim")
	}
}

func TestLoadState_TrimsMinuteStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for i := range models.MinuteRetention + 10 {
		key := fmt.Sprintf("2026-01-01-%02d-%02d", i/60, i%60)
		if err := db.SaveIncrement(models.Increment{Day: "2026-01-01", Hour: key[:13], Minute: key}); err != nil {
			t.Fatalf("SaveIncrement failed: %v", err)
		}
	}

	if _, err := db.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM minute_stats").Scan(&rows); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if rows != models.MinuteRetention {
		t.Errorf("stored minute rows = %d, want %d", rows, models.MinuteRetention)
	}
	var oldest int
	if err := db.QueryRow("SELECT COUNT(*) FROM minute_stats WHERE key = ?", "2026-01-01-00-00").Scan(&oldest); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if oldest != 0 {
		t.Error("oldest minute still stored after load")
	}
}
