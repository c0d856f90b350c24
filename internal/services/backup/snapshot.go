// Package backup exports and restores the full tracker state.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services/tracking"
)

// CurrentVersion is written to every export. Documents without a version are version 1.
const CurrentVersion = 1

// ErrInvalidFormat is returned when a backup document does not match the expected schema.
var ErrInvalidFormat = errors.New("invalid backup format")

// Snapshot is the on-disk backup document.
type Snapshot struct {
	Version            int                  `json:"version"`
	DailyStats         map[string]int       `json:"dailyStats"`
	HourlyStats        map[string]int       `json:"hourlyStats"`
	MinuteStats        map[string]int       `json:"minuteStats"`
	AppStats           map[string]int       `json:"appStats"`
	ProjectStats       map[string]int       `json:"projectStats"`
	AppBundleMapping   map[string]string    `json:"appBundleMapping"`
	NotifiedMilestones map[string][]float64 `json:"notifiedMilestones"`
	WakaTimeAPIKey     string               `json:"wakaTimeApiKey"`
	DailyGoal          int                  `json:"dailyGoal"`
}

// requiredFields must all be present in an imported document.
var requiredFields = []string{
	"dailyStats",
	"hourlyStats",
	"minuteStats",
	"appStats",
	"projectStats",
	"appBundleMapping",
	"notifiedMilestones",
	"wakaTimeApiKey",
	"dailyGoal",
}

// FromState builds a snapshot document from state.
func FromState(state models.State) Snapshot {
	s := state.Clone()
	return Snapshot{
		Version:            CurrentVersion,
		DailyStats:         s.Stats.Daily,
		HourlyStats:        s.Stats.Hourly,
		MinuteStats:        s.Stats.Minute,
		AppStats:           s.Stats.Apps,
		ProjectStats:       s.Stats.Projects,
		AppBundleMapping:   s.Stats.AppBundles,
		NotifiedMilestones: s.Notified,
		WakaTimeAPIKey:     s.Settings.WakaTimeAPIKey,
		DailyGoal:          s.Settings.DailyGoal,
	}
}

// State converts the document back into tracker state. theme is carried over
// because the document does not hold it.
func (s Snapshot) State(theme models.Theme) models.State {
	return models.State{
		Stats: models.StatMaps{
			Daily:      s.DailyStats,
			Hourly:     s.HourlyStats,
			Minute:     s.MinuteStats,
			Apps:       s.AppStats,
			Projects:   s.ProjectStats,
			AppBundles: s.AppBundleMapping,
		},
		Notified: s.NotifiedMilestones,
		Settings: models.Settings{
			DailyGoal:      s.DailyGoal,
			WakaTimeAPIKey: s.WakaTimeAPIKey,
			Theme:          theme,
		},
	}.Clone()
}

// Encode writes the snapshot as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Decode reads and fully validates a snapshot document.
// Every failure wraps ErrInvalidFormat.
func Decode(r io.Reader) (Snapshot, error) {
	dec := json.NewDecoder(r)
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return Snapshot{}, invalid("not a JSON object: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Snapshot{}, invalid("unexpected data after the backup object")
	}

	snap := Snapshot{Version: 1}
	if raw, ok := fields["version"]; ok {
		if err := json.Unmarshal(raw, &snap.Version); err != nil {
			return Snapshot{}, invalid("version: %v", err)
		}
		if snap.Version < 1 || snap.Version > CurrentVersion {
			return Snapshot{}, invalid("unsupported version %d", snap.Version)
		}
	}

	for _, name := range requiredFields {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return Snapshot{}, invalid("missing field %q", name)
		}
	}

	targets := map[string]any{
		"dailyStats":         &snap.DailyStats,
		"hourlyStats":        &snap.HourlyStats,
		"minuteStats":        &snap.MinuteStats,
		"appStats":           &snap.AppStats,
		"projectStats":       &snap.ProjectStats,
		"appBundleMapping":   &snap.AppBundleMapping,
		"notifiedMilestones": &snap.NotifiedMilestones,
		"wakaTimeApiKey":     &snap.WakaTimeAPIKey,
		"dailyGoal":          &snap.DailyGoal,
	}
	for _, name := range requiredFields {
		if err := json.Unmarshal(fields[name], targets[name]); err != nil {
			return Snapshot{}, invalid("field %q: %v", name, err)
		}
	}

	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s Snapshot) validate() error {
	keyed := []struct {
		name   string
		layout string
		counts map[string]int
	}{
		{"dailyStats", tracking.DayLayout, s.DailyStats},
		{"hourlyStats", tracking.HourLayout, s.HourlyStats},
		{"minuteStats", tracking.MinuteLayout, s.MinuteStats},
		{"appStats", "", s.AppStats},
		{"projectStats", "", s.ProjectStats},
	}
	for _, k := range keyed {
		for key, count := range k.counts {
			if count < 0 {
				return invalid("%s[%q] is negative", k.name, key)
			}
			if k.layout != "" && !tracking.ValidKey(k.layout, key) {
				return invalid("%s has malformed key %q", k.name, key)
			}
			if k.layout == "" && key == "" {
				return invalid("%s has an empty name", k.name)
			}
		}
	}

	for day, fractions := range s.NotifiedMilestones {
		if !tracking.ValidKey(tracking.DayLayout, day) {
			return invalid("notifiedMilestones has malformed day %q", day)
		}
		seen := make(map[float64]bool, len(fractions))
		for _, f := range fractions {
			if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
				return invalid("notifiedMilestones[%q] has invalid fraction %v", day, f)
			}
			if seen[f] {
				return invalid("notifiedMilestones[%q] repeats fraction %v", day, f)
			}
			seen[f] = true
		}
	}

	if s.DailyGoal < 0 {
		return invalid("dailyGoal is negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}
