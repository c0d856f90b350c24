// Package analytics computes derived views over the keystroke counters.
// Every query works on one snapshot of the store and never mutates it.
package analytics

import (
	"time"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services/category"
)

// Source provides consistent snapshots of the counters.
type Source interface {
	Snapshot() models.State
	Location() *time.Location
}

// Classifier maps an application to a category.
type Classifier interface {
	Classify(appName, bundleID string) models.Category
}

type classifyFunc func(appName, bundleID string) models.Category

func (f classifyFunc) Classify(appName, bundleID string) models.Category {
	return f(appName, bundleID)
}

// Engine answers analytics queries.
type Engine struct {
	source     Source
	classifier Classifier
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the reference time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithClassifier overrides the category classifier.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// New creates an engine reading from source.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		classifier: classifyFunc(category.Classify),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// view is one consistent snapshot plus the reference time.
type view struct {
	state      models.State
	loc        *time.Location
	now        time.Time
	today      time.Time
	classifier Classifier
}

func (e *Engine) view() *view {
	loc := e.source.Location()
	if loc == nil {
		loc = time.Local
	}
	now := e.now().In(loc)
	return &view{
		state:      e.source.Snapshot(),
		loc:        loc,
		now:        now,
		today:      startOfDay(now),
		classifier: e.classifier,
	}
}

// WeeklyTotal sums days from Monday of the current ISO week through today.
func (e *Engine) WeeklyTotal() int { return e.view().weeklyTotal() }

// MonthlyTotal sums days from the first of the month through today.
func (e *Engine) MonthlyTotal() int { return e.view().monthlyTotal() }

// BestDay returns the day with the highest count, or ("N/A", 0) when empty.
func (e *Engine) BestDay() models.DayCount { return e.view().bestDay() }

// QuietestDay returns the recorded day with the lowest count, nil when empty.
// Days without an entry are never candidates.
func (e *Engine) QuietestDay() *models.DayCount { return e.view().quietestDay() }

// MostActiveDayThisWeek returns the best day of the current ISO week, nil when none.
func (e *Engine) MostActiveDayThisWeek() *models.DayCount { return e.view().mostActiveDayThisWeek() }

// TodayHourly returns 24 points labeled "HH:00".
func (e *Engine) TodayHourly() []models.ChartPoint { return e.view().todayHourly() }

// LastSevenDays returns 7 points ending today, labeled by weekday.
func (e *Engine) LastSevenDays() []models.ChartPoint { return e.view().lastDays(7, "Mon") }

// LastThirtyDays returns 30 points ending today, labeled by day of month.
func (e *Engine) LastThirtyDays() []models.ChartPoint { return e.view().lastDays(30, "2") }

// LastSixMonths returns 6 monthly sums ending with the current month.
func (e *Engine) LastSixMonths() []models.ChartPoint { return e.view().lastSixMonths() }

// TotalAllTime sums every day.
func (e *Engine) TotalAllTime() int { return e.view().totalAllTime() }

// PeakHour returns the hour of day with the highest total across all days.
func (e *Engine) PeakHour() models.HourCount { return e.view().peakHour() }

// AveragePerHour is the mean over hours with any activity.
func (e *Engine) AveragePerHour() float64 { return e.view().averagePerHour() }

// CurrentStreak counts consecutive active days ending today or yesterday.
func (e *Engine) CurrentStreak() int { return e.view().currentStreak() }

// TopApps ranks applications by count. A limit of zero or less returns all.
func (e *Engine) TopApps(limit int) []models.RankedEntry {
	return rank(e.view().state.Stats.Apps, limit)
}

// TopProjects ranks projects by count. A limit of zero or less returns all.
func (e *Engine) TopProjects(limit int) []models.RankedEntry {
	return rank(e.view().state.Stats.Projects, limit)
}

// CategoryStats sums application counts per category.
func (e *Engine) CategoryStats() []models.CategoryCount { return e.view().categoryStats() }

// LibraryStats measures the all-time total against well-known texts.
func (e *Engine) LibraryStats() []models.LibraryProgress {
	return libraryProgress(e.view().totalAllTime())
}

// ProductivityBadge classifies recent activity.
func (e *Engine) ProductivityBadge() models.Badge { return e.view().badge() }

// IsInFlow reports sustained typing over the last 15 minutes.
func (e *Engine) IsInFlow() bool { return e.view().isInFlow() }

// CurrentKPM returns the count of the current minute bucket.
func (e *Engine) CurrentKPM() int { return e.view().currentKPM() }

// RecentMinutes returns the last n minute buckets, oldest first.
func (e *Engine) RecentMinutes(n int) []models.ChartPoint { return e.view().recentMinutes(n) }

// GoalProgress returns today's count divided by the goal, 0 when the goal is disabled.
func (e *Engine) GoalProgress() float64 { return e.view().goalProgress() }

// Summary computes the dashboard headline numbers from a single snapshot.
func (e *Engine) Summary() models.Summary {
	v := e.view()
	return models.Summary{
		Today:        v.todayCount(),
		Goal:         v.state.Settings.DailyGoal,
		GoalProgress: v.goalProgress(),
		Weekly:       v.weeklyTotal(),
		Monthly:      v.monthlyTotal(),
		AllTime:      v.totalAllTime(),
		Streak:       v.currentStreak(),
		Badge:        v.badge(),
		BestDay:      v.bestDay(),
		PeakHour:     v.peakHour(),
		KPM:          v.currentKPM(),
		InFlow:       v.isInFlow(),
	}
}
