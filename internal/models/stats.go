// Package models defines data structures and domain types.
package models

import "maps"

// MinuteRetention is the maximum number of minute buckets kept in memory and storage.
const MinuteRetention = 120

// DefaultDailyGoal is the daily keystroke goal used until the user picks one.
const DefaultDailyGoal = 5000

// StatMaps holds every keystroke counter, keyed by bucket.
type StatMaps struct {
	Daily      map[string]int
	Hourly     map[string]int
	Minute     map[string]int
	Apps       map[string]int
	Projects   map[string]int
	AppBundles map[string]string
}

// NewStatMaps returns empty, non-nil counters.
func NewStatMaps() StatMaps {
	return StatMaps{
		Daily:      make(map[string]int),
		Hourly:     make(map[string]int),
		Minute:     make(map[string]int),
		Apps:       make(map[string]int),
		Projects:   make(map[string]int),
		AppBundles: make(map[string]string),
	}
}

// Clone returns a deep copy of the counters.
func (s StatMaps) Clone() StatMaps {
	return StatMaps{
		Daily:      cloneCounts(s.Daily),
		Hourly:     cloneCounts(s.Hourly),
		Minute:     cloneCounts(s.Minute),
		Apps:       cloneCounts(s.Apps),
		Projects:   cloneCounts(s.Projects),
		AppBundles: cloneStrings(s.AppBundles),
	}
}

// IsEmpty reports whether no counter holds any entry.
func (s StatMaps) IsEmpty() bool {
	return len(s.Daily) == 0 && len(s.Hourly) == 0 && len(s.Minute) == 0 &&
		len(s.Apps) == 0 && len(s.Projects) == 0 && len(s.AppBundles) == 0
}

// Settings is the user configuration persisted next to the counters.
type Settings struct {
	DailyGoal      int
	WakaTimeAPIKey string
	Theme          Theme
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() Settings {
	return Settings{DailyGoal: DefaultDailyGoal}
}

// State is the full persisted state: counters, notified milestones and settings.
type State struct {
	Stats    StatMaps
	Notified map[string][]float64
	Settings Settings
}

// NewState returns an empty state with default settings.
func NewState() State {
	return State{
		Stats:    NewStatMaps(),
		Notified: make(map[string][]float64),
		Settings: DefaultSettings(),
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	notified := make(map[string][]float64, len(s.Notified))
	for day, fractions := range s.Notified {
		notified[day] = append([]float64(nil), fractions...)
	}
	return State{
		Stats:    s.Stats.Clone(),
		Notified: notified,
		Settings: s.Settings,
	}
}

// Increment describes one applied keystroke: the buckets it touched and the
// minute buckets evicted to keep the retention bound.
type Increment struct {
	Day     string
	Hour    string
	Minute  string
	App     string
	Bundle  string
	Project string
	Evicted []string
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	maps.Copy(out, m)
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}
