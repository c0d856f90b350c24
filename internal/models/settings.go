package models

// Theme identifies the color scheme preference.
type Theme int

const (
	// ThemeSystem follows the terminal background.
	ThemeSystem Theme = iota
	// ThemeLight forces the light palette.
	ThemeLight
	// ThemeDark forces the dark palette.
	ThemeDark
)

// String returns the display name for a theme.
func (t Theme) String() string {
	switch t {
	case ThemeSystem:
		return "System"
	case ThemeLight:
		return "Light"
	case ThemeDark:
		return "Dark"
	default:
		return "Unknown"
	}
}

// Next cycles system -> light -> dark -> system.
func (t Theme) Next() Theme {
	return (t + 1) % 3
}

// Goal adjustment bounds used by the settings screen.
const (
	MinDailyGoal  = 1000
	MaxDailyGoal  = 20000
	DailyGoalStep = 500
)

// ClampGoal bounds a goal to the adjustable range.
func ClampGoal(goal int) int {
	if goal < MinDailyGoal {
		return MinDailyGoal
	}
	if goal > MaxDailyGoal {
		return MaxDailyGoal
	}
	return goal
}
