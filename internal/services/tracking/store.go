// Package tracking owns the keystroke counters and their retention rules.
package tracking

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/typesteps/typesteps/internal/models"
)

// Persister stores counter mutations durably.
type Persister interface {
	SaveIncrement(inc models.Increment) error
	ReplaceState(state models.State) error
	ClearTracking() error
	AddNotifiedMilestone(day string, fraction float64) error
	SaveSettings(settings models.Settings) error
}

// Result is returned by Increment.
type Result struct {
	Day      string
	DayCount int
}

// Store holds all counters in memory and writes every mutation through its Persister.
// Mutations are serialized; readers get deep copies.
type Store struct {
	mu        sync.RWMutex
	state     models.State
	persister Persister
	loc       *time.Location
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the time zone used to derive bucket keys.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store seeded with a previously loaded state.
func New(initial models.State, persister Persister, opts ...Option) *Store {
	if persister == nil {
		persister = nopPersister{}
	}

	s := &Store{
		state:     normalize(initial.Clone()),
		persister: persister,
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	evictOldest(s.state.Stats.Minute, models.MinuteRetention)
	return s
}

// Location returns the time zone used for bucket keys.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock in the store location.
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Increment counts one keystroke at ts. Empty app, bundle or project values are skipped.
// The in-memory counters are always updated; a persistence failure is returned.
func (s *Store) Increment(ts time.Time, app, bundle, project string) (Result, error) {
	local := ts.In(s.loc)
	inc := models.Increment{
		Day:     DayKey(local),
		Hour:    HourKey(local),
		Minute:  MinuteKey(local),
		App:     app,
		Project: project,
	}
	if app != "" {
		inc.Bundle = bundle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.state.Stats
	stats.Daily[inc.Day]++
	stats.Hourly[inc.Hour]++
	stats.Minute[inc.Minute]++
	if inc.App != "" {
		stats.Apps[inc.App]++
		if inc.Bundle != "" {
			stats.AppBundles[inc.App] = inc.Bundle
		}
	}
	if inc.Project != "" {
		stats.Projects[inc.Project]++
	}
	inc.Evicted = evictOldest(stats.Minute, models.MinuteRetention)

	result := Result{Day: inc.Day, DayCount: stats.Daily[inc.Day]}

	if err := s.persister.SaveIncrement(inc); err != nil {
		return result, fmt.Errorf("failed to persist keystroke: %w", err)
	}
	return result, nil
}

// CountFor returns the count for a day key, 0 if absent.
func (s *Store) CountFor(day string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Stats.Daily[day]
}

// Today returns today's count.
func (s *Store) Today() int {
	return s.CountFor(DayKey(s.Now()))
}

// Reset clears every counter and the notified log. Settings are kept.
// Storage is cleared first so a failure leaves both sides untouched.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.ClearTracking(); err != nil {
		return fmt.Errorf("failed to reset tracking data: %w", err)
	}

	s.state.Stats = models.NewStatMaps()
	s.state.Notified = make(map[string][]float64)
	return nil
}

// ReplaceAll overwrites counters, notified log and settings with state.
// Minute retention is applied to the incoming data.
func (s *Store) ReplaceAll(state models.State) error {
	next := normalize(state.Clone())
	evictOldest(next.Stats.Minute, models.MinuteRetention)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.ReplaceState(next); err != nil {
		return fmt.Errorf("failed to replace tracking data: %w", err)
	}

	s.state = next
	return nil
}

// Snapshot returns a deep copy of the full state.
func (s *Store) Snapshot() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Stats returns a deep copy of the counters.
func (s *Store) Stats() models.StatMaps {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Stats.Clone()
}

// Settings returns the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Settings
}

// SetDailyGoal persists a new daily goal.
func (s *Store) SetDailyGoal(goal int) error {
	return s.updateSettings(func(st *models.Settings) { st.DailyGoal = goal })
}

// SetAPIKey persists a new WakaTime API key.
func (s *Store) SetAPIKey(key string) error {
	return s.updateSettings(func(st *models.Settings) { st.WakaTimeAPIKey = key })
}

// SetTheme persists a new theme.
func (s *Store) SetTheme(theme models.Theme) error {
	return s.updateSettings(func(st *models.Settings) { st.Theme = theme })
}

func (s *Store) updateSettings(apply func(*models.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Settings
	apply(&next)
	if err := s.persister.SaveSettings(next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.state.Settings = next
	return nil
}

// Notified returns the milestone fractions already notified for day.
func (s *Store) Notified(day string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Notified[day])
}

// MarkNotified records a notified milestone. Recording the same pair twice is a no-op.
// The log is only updated in memory once storage accepted it.
func (s *Store) MarkNotified(day string, fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.state.Notified[day], fraction) {
		return nil
	}
	if err := s.persister.AddNotifiedMilestone(day, fraction); err != nil {
		return fmt.Errorf("failed to record milestone: %w", err)
	}

	fractions := append(s.state.Notified[day], fraction)
	slices.Sort(fractions)
	s.state.Notified[day] = fractions
	return nil
}

// evictOldest deletes the chronologically oldest keys until at most limit remain
// and returns the deleted keys.
func evictOldest(m map[string]int, limit int) []string {
	if len(m) <= limit {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	evicted := keys[:len(keys)-limit]
	for _, k := range evicted {
		delete(m, k)
	}
	return evicted
}

// normalize replaces nil maps so callers never write into a nil map.
func normalize(state models.State) models.State {
	empty := models.NewStatMaps()
	if state.Stats.Daily == nil {
		state.Stats.Daily = empty.Daily
	}
	if state.Stats.Hourly == nil {
		state.Stats.Hourly = empty.Hourly
	}
	if state.Stats.Minute == nil {
		state.Stats.Minute = empty.Minute
	}
	if state.Stats.Apps == nil {
		state.Stats.Apps = empty.Apps
	}
	if state.Stats.Projects == nil {
		state.Stats.Projects = empty.Projects
	}
	if state.Stats.AppBundles == nil {
		state.Stats.AppBundles = empty.AppBundles
	}
	if state.Notified == nil {
		state.Notified = make(map[string][]float64)
	}
	return state
}

type nopPersister struct{}

func (nopPersister) SaveIncrement(models.Increment) error       { return nil }
func (nopPersister) ReplaceState(models.State) error            { return nil }
func (nopPersister) ClearTracking() error                       { return nil }
func (nopPersister) AddNotifiedMilestone(string, float64) error { return nil }
func (nopPersister) SaveSettings(models.Settings) error         { return nil }
