package models

import "testing"

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"Day", TimeRangeDay, "Day"},
		{"Week", TimeRangeWeek, "Week"},
		{"Month", TimeRangeMonth, "Month"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	if got := TimeRangeMonth.Next(); got != TimeRangeDay {
		t.Errorf("Month.Next() = %v, want Day", got)
	}
	if got := TimeRangeDay.Next(); got != TimeRangeWeek {
		t.Errorf("Day.Next() = %v, want Week", got)
	}
}

func TestTheme_Next(t *testing.T) {
	tests := []struct {
		in   Theme
		want Theme
	}{
		{ThemeSystem, ThemeLight},
		{ThemeLight, ThemeDark},
		{ThemeDark, ThemeSystem},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := tt.in.Next(); got != tt.want {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampGoal(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below", 200, MinDailyGoal},
		{"inside", 7500, 7500},
		{"above", 50000, MaxDailyGoal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampGoal(tt.in); got != tt.want {
				t.Errorf("ClampGoal(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestState_CloneIsDeep(t *testing.T) {
	s := NewState()
	s.Stats.Daily["2026-01-01"] = 3
	s.Notified["2026-01-01"] = []float64{1.0}

	c := s.Clone()
	c.Stats.Daily["2026-01-01"] = 99
	c.Notified["2026-01-01"][0] = 0.5

	if s.Stats.Daily["2026-01-01"] != 3 {
		t.Errorf("original daily mutated: %d", s.Stats.Daily["2026-01-01"])
	}
	if s.Notified["2026-01-01"][0] != 1.0 {
		t.Errorf("original notified mutated: %v", s.Notified["2026-01-01"])
	}
}

func TestStatMaps_IsEmpty(t *testing.T) {
	s := NewStatMaps()
	if !s.IsEmpty() {
		t.Error("new maps should be empty")
	}
	s.AppBundles["Slack"] = "com.tinyspeck.slackmacgap"
	if s.IsEmpty() {
		t.Error("maps with a bundle entry should not be empty")
	}
}
