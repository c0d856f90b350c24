package tracking

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/typesteps/typesteps/internal/models"
)

// fakePersister records calls and can be told to fail.
type fakePersister struct {
	mu         sync.Mutex
	increments []models.Increment
	replaced   *models.State
	cleared    int
	notified   map[string][]float64
	settings   *models.Settings
	err        error
}

func (f *fakePersister) SaveIncrement(inc models.Increment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.increments = append(f.increments, inc)
	return nil
}

func (f *fakePersister) ReplaceState(state models.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.replaced = &state
	return nil
}

func (f *fakePersister) ClearTracking() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.cleared++
	return nil
}

func (f *fakePersister) AddNotifiedMilestone(day string, fraction float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.notified == nil {
		f.notified = make(map[string][]float64)
	}
	f.notified[day] = append(f.notified[day], fraction)
	return nil
}

func (f *fakePersister) SaveSettings(settings models.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.settings = &settings
	return nil
}

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestStore(p Persister) *Store {
	return New(models.NewState(), p, WithLocation(time.UTC), WithClock(func() time.Time { return base }))
}

func TestIncrement_UpdatesAllBuckets(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)

	res, err := s.Increment(base.Add(30*time.Second), "Xcode", "com.apple.dt.Xcode", "typesteps")
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if res.Day != "2026-03-02" || res.DayCount != 1 {
		t.Errorf("result = %+v, want day 2026-03-02 count 1", res)
	}

	stats := s.Stats()
	if stats.Daily["2026-03-02"] != 1 || stats.Hourly["2026-03-02-09"] != 1 || stats.Minute["2026-03-02-09-00"] != 1 {
		t.Errorf("time buckets not incremented: %+v", stats)
	}
	if stats.Apps["Xcode"] != 1 || stats.Projects["typesteps"] != 1 {
		t.Errorf("app/project not incremented: %+v", stats)
	}
	if stats.AppBundles["Xcode"] != "com.apple.dt.Xcode" {
		t.Errorf("bundle = %q", stats.AppBundles["Xcode"])
	}
	if len(p.increments) != 1 {
		t.Fatalf("persisted %d increments, want 1", len(p.increments))
	}
}

func TestIncrement_SkipsAbsentOptionals(t *testing.T) {
	s := newTestStore(&fakePersister{})

	// A bundle without an app has nothing to attach to.
	if _, err := s.Increment(base, "", "com.example", ""); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	stats := s.Stats()
	if len(stats.Apps) != 0 || len(stats.Projects) != 0 || len(stats.AppBundles) != 0 {
		t.Errorf("optional maps should stay empty: %+v", stats)
	}
	if stats.Daily["2026-03-02"] != 1 {
		t.Errorf("daily = %d, want 1", stats.Daily["2026-03-02"])
	}
}

func TestIncrement_BundleLastWriteWins(t *testing.T) {
	s := newTestStore(nil)

	_, _ = s.Increment(base, "Code", "com.microsoft.VSCode", "")
	_, _ = s.Increment(base, "Code", "com.microsoft.VSCodeInsiders", "")

	if got := s.Stats().AppBundles["Code"]; got != "com.microsoft.VSCodeInsiders" {
		t.Errorf("bundle = %q, want last written", got)
	}
}

func TestIncrement_Sums(t *testing.T) {
	s := newTestStore(nil)

	const n = 500
	for i := range n {
		if _, err := s.Increment(base.Add(time.Duration(i)*17*time.Second), "App", "", ""); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	stats := s.Stats()
	if got := sum(stats.Daily); got != n {
		t.Errorf("sum(daily) = %d, want %d", got, n)
	}
	if got := sum(stats.Hourly); got != n {
		t.Errorf("sum(hourly) = %d, want %d", got, n)
	}
	if got := sum(stats.Minute); got > n {
		t.Errorf("sum(minute) = %d, want <= %d", got, n)
	}
}

func TestIncrement_MinuteRetention(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)

	const minutes = models.MinuteRetention + 30
	for i := range minutes {
		if _, err := s.Increment(base.Add(time.Duration(i)*time.Minute), "", "", ""); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	stats := s.Stats()
	if len(stats.Minute) != models.MinuteRetention {
		t.Fatalf("len(minute) = %d, want %d", len(stats.Minute), models.MinuteRetention)
	}

	for i := minutes - models.MinuteRetention; i < minutes; i++ {
		key := MinuteKey(base.Add(time.Duration(i) * time.Minute))
		if _, ok := stats.Minute[key]; !ok {
			t.Errorf("expected latest minute %s to be retained", key)
		}
	}

	// Every evicted key is reported to storage exactly once.
	var evicted []string
	for _, inc := range p.increments {
		evicted = append(evicted, inc.Evicted...)
	}
	if len(evicted) != 30 {
		t.Fatalf("evicted %d keys, want 30", len(evicted))
	}
	sort.Strings(evicted)
	if evicted[0] != MinuteKey(base) {
		t.Errorf("first evicted = %s, want %s", evicted[0], MinuteKey(base))
	}
}

func TestIncrement_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	s := New(models.NewState(), nil, WithLocation(loc))

	// 02:00 UTC is still the previous day five hours west.
	res, _ := s.Increment(time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC), "", "", "")
	if res.Day != "2026-03-01" {
		t.Errorf("day = %s, want 2026-03-01", res.Day)
	}
	if _, ok := s.Stats().Hourly["2026-03-01-21"]; !ok {
		t.Error("expected hour key in store location")
	}
}

func TestIncrement_PersistenceErrorPropagates(t *testing.T) {
	p := &fakePersister{err: errors.New("disk full")}
	s := newTestStore(p)

	res, err := s.Increment(base, "", "", "")
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !errors.Is(err, p.err) {
		t.Errorf("error %v does not wrap %v", err, p.err)
	}
	// The in-memory mutation already happened.
	if res.DayCount != 1 || s.Today() != 1 {
		t.Errorf("in-memory count = %d, want 1", s.Today())
	}
}

func TestIncrement_ConcurrentWriters(t *testing.T) {
	s := newTestStore(nil)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := range 100 {
				_, _ = s.Increment(base.Add(time.Duration(offset*100+i)*time.Second), "", "", "")
			}
		}(w)
	}
	wg.Wait()

	if got := sum(s.Stats().Daily); got != 800 {
		t.Errorf("sum(daily) = %d, want 800", got)
	}
}

func TestCountFor(t *testing.T) {
	state := models.NewState()
	state.Stats.Daily["2026-03-01"] = 42
	s := New(state, nil, WithLocation(time.UTC), WithClock(func() time.Time { return base }))

	tests := []struct {
		day  string
		want int
	}{
		{"2026-03-01", 42},
		{"2026-03-02", 0},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := s.CountFor(tt.day); got != tt.want {
				t.Errorf("CountFor(%s) = %d, want %d", tt.day, got, tt.want)
			}
		})
	}
}

func TestReset_PreservesSettings(t *testing.T) {
	p := &fakePersister{}
	state := models.NewState()
	state.Settings = models.Settings{DailyGoal: 7000, WakaTimeAPIKey: "waka_1"}
	s := New(state, p, WithLocation(time.UTC))

	_, _ = s.Increment(base, "Slack", "com.tinyspeck.slackmacgap", "ops")
	_ = s.MarkNotified("2026-03-02", 1.0)

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	snap := s.Snapshot()
	if !snap.Stats.IsEmpty() {
		t.Errorf("stats not empty: %+v", snap.Stats)
	}
	if len(snap.Notified) != 0 {
		t.Errorf("notified not empty: %v", snap.Notified)
	}
	if snap.Settings != state.Settings {
		t.Errorf("settings = %+v, want %+v", snap.Settings, state.Settings)
	}
	if p.cleared != 1 {
		t.Errorf("ClearTracking called %d times, want 1", p.cleared)
	}
}

func TestReset_FailureLeavesStateUntouched(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)
	_, _ = s.Increment(base, "", "", "")

	p.err = errors.New("locked")
	if err := s.Reset(); err == nil {
		t.Fatal("expected reset error")
	}
	if s.Today() != 1 {
		t.Errorf("today = %d, want 1 after failed reset", s.Today())
	}
}

func TestReplaceAll(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)
	_, _ = s.Increment(base, "Old", "", "")

	next := models.NewState()
	next.Stats.Daily["2026-01-01"] = 5
	next.Settings.DailyGoal = 3000
	for i := range models.MinuteRetention + 5 {
		next.Stats.Minute[fmt.Sprintf("2026-01-01-%02d-%02d", i/60, i%60)] = 1
	}

	if err := s.ReplaceAll(next); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	snap := s.Snapshot()
	if _, ok := snap.Stats.Apps["Old"]; ok {
		t.Error("old app survived replace")
	}
	if snap.Stats.Daily["2026-01-01"] != 5 || snap.Settings.DailyGoal != 3000 {
		t.Errorf("unexpected state after replace: %+v", snap)
	}
	if len(snap.Stats.Minute) != models.MinuteRetention {
		t.Errorf("len(minute) = %d, want %d", len(snap.Stats.Minute), models.MinuteRetention)
	}
	if p.replaced == nil || len(p.replaced.Stats.Minute) != models.MinuteRetention {
		t.Error("persisted state was not trimmed")
	}
	// The caller's state is not aliased.
	next.Stats.Daily["2026-01-01"] = 99
	if s.CountFor("2026-01-01") != 5 {
		t.Error("store aliases the replaced state")
	}
}

func TestReplaceAll_FailureLeavesStateUntouched(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)
	_, _ = s.Increment(base, "", "", "")

	p.err = errors.New("read-only")
	next := models.NewState()
	next.Stats.Daily["1999-01-01"] = 1
	if err := s.ReplaceAll(next); err == nil {
		t.Fatal("expected replace error")
	}
	if s.CountFor("1999-01-01") != 0 || s.Today() != 1 {
		t.Error("state changed after failed replace")
	}
}

func TestMarkNotified(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)

	for range 2 {
		if err := s.MarkNotified("2026-03-02", 1.0); err != nil {
			t.Fatalf("MarkNotified failed: %v", err)
		}
	}
	if err := s.MarkNotified("2026-03-02", 0.5); err != nil {
		t.Fatalf("MarkNotified failed: %v", err)
	}

	if got := fmt.Sprint(s.Notified("2026-03-02")); got != "[0.5 1]" {
		t.Errorf("notified = %s, want [0.5 1]", got)
	}
	if len(p.notified["2026-03-02"]) != 2 {
		t.Errorf("persisted %v, want two fractions", p.notified["2026-03-02"])
	}
}

func TestMarkNotified_FailureNotRecorded(t *testing.T) {
	p := &fakePersister{err: errors.New("boom")}
	s := newTestStore(p)

	if err := s.MarkNotified("2026-03-02", 1.0); err == nil {
		t.Fatal("expected error")
	}
	if len(s.Notified("2026-03-02")) != 0 {
		t.Error("milestone recorded despite persistence failure")
	}
}

func TestSettingsUpdates(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(p)

	if err := s.SetDailyGoal(8000); err != nil {
		t.Fatalf("SetDailyGoal failed: %v", err)
	}
	if err := s.SetAPIKey("waka"); err != nil {
		t.Fatalf("SetAPIKey failed: %v", err)
	}
	if err := s.SetTheme(models.ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}

	want := models.Settings{DailyGoal: 8000, WakaTimeAPIKey: "waka", Theme: models.ThemeDark}
	if got := s.Settings(); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
	if p.settings == nil || *p.settings != want {
		t.Errorf("persisted settings = %+v, want %+v", p.settings, want)
	}

	p.err = errors.New("nope")
	if err := s.SetDailyGoal(1000); err == nil {
		t.Fatal("expected error")
	}
	if s.Settings().DailyGoal != 8000 {
		t.Error("goal changed despite persistence failure")
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	s := newTestStore(nil)
	_, _ = s.Increment(base, "", "", "")

	snap := s.Snapshot()
	snap.Stats.Daily["2026-03-02"] = 1000

	if s.Today() != 1 {
		t.Errorf("snapshot mutation leaked into store: %d", s.Today())
	}
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		layout string
		key    string
		want   bool
	}{
		{DayLayout, "2026-01-31", true},
		{DayLayout, "2026-1-31", false},
		{DayLayout, "2026-02-30", false},
		{HourLayout, "2026-01-01-23", true},
		{HourLayout, "2026-01-01-24", false},
		{MinuteLayout, "2026-01-01-23-59", true},
		{MinuteLayout, "2026-01-01-23", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := ValidKey(tt.layout, tt.key); got != tt.want {
				t.Errorf("ValidKey(%q, %q) = %v, want %v", tt.layout, tt.key, got, tt.want)
			}
		})
	}
}
