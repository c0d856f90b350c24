package models

// ChartPoint is one labeled value in a chart series.
type ChartPoint struct {
	Label string
	Count int
}

// DayCount pairs a day key with its count.
type DayCount struct {
	Day   string
	Count int
}

// HourCount pairs an hour of day (0-23) with a count.
type HourCount struct {
	Hour  int
	Count int
}

// RankedEntry is a named counter in a top-N ranking.
type RankedEntry struct {
	Name  string
	Count int
}

// CategoryCount is the summed count for a category.
type CategoryCount struct {
	Category Category
	Count    int
}

// LibraryProgress tracks the all-time total against a well-known text length.
type LibraryProgress struct {
	Label      string
	Threshold  int
	Progress   float64
	Iterations int
}

// Badge is the productivity label shown on the insights tab.
type Badge string

const (
	BadgeUnstoppable Badge = "UNSTOPPABLE"
	BadgeConsistent  Badge = "CONSISTENT"
	BadgeGoalGetter  Badge = "GOAL GETTER"
	BadgeOnTheRise   Badge = "ON THE RISE"
)

// Summary bundles the headline numbers rendered by the dashboard.
type Summary struct {
	Today        int
	Goal         int
	GoalProgress float64
	Weekly       int
	Monthly      int
	AllTime      int
	Streak       int
	Badge        Badge
	BestDay      DayCount
	PeakHour     HourCount
	KPM          int
	InFlow       bool
}
