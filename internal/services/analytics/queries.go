package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services/tracking"
)

// Flow detection window.
const (
	flowWindowMinutes = 15
	flowActiveMinutes = 10
	flowMinKeystrokes = 20
)

// Badge thresholds in days.
const (
	unstoppableStreak = 30
	consistentStreak  = 7
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (v *view) todayCount() int {
	return v.state.Stats.Daily[tracking.DayKey(v.today)]
}

func (v *view) weekStart() time.Time {
	offset := (int(v.today.Weekday()) + 6) % 7 // Monday = 0
	return v.today.AddDate(0, 0, -offset)
}

// sumRange sums daily entries with from <= key <= to. Day keys order chronologically.
func (v *view) sumRange(from, to string) int {
	total := 0
	for day, count := range v.state.Stats.Daily {
		if day >= from && day <= to {
			total += count
		}
	}
	return total
}

func (v *view) weeklyTotal() int {
	return v.sumRange(tracking.DayKey(v.weekStart()), tracking.DayKey(v.today))
}

func (v *view) monthlyTotal() int {
	first := time.Date(v.today.Year(), v.today.Month(), 1, 0, 0, 0, 0, v.loc)
	return v.sumRange(tracking.DayKey(first), tracking.DayKey(v.today))
}

func (v *view) totalAllTime() int {
	total := 0
	for _, count := range v.state.Stats.Daily {
		total += count
	}
	return total
}

// sortedDays returns day keys within [from, to], ascending. Empty bounds are open.
func (v *view) sortedDays(from, to string) []string {
	days := make([]string, 0, len(v.state.Stats.Daily))
	for day := range v.state.Stats.Daily {
		if (from == "" || day >= from) && (to == "" || day <= to) {
			days = append(days, day)
		}
	}
	sort.Strings(days)
	return days
}

// extreme scans days in order and keeps the first strict winner, so ties
// resolve to the earliest day.
func (v *view) extreme(days []string, better func(a, b int) bool) *models.DayCount {
	var best *models.DayCount
	for _, day := range days {
		count := v.state.Stats.Daily[day]
		if best == nil || better(count, best.Count) {
			best = &models.DayCount{Day: day, Count: count}
		}
	}
	return best
}

func greater(a, b int) bool { return a > b }
func less(a, b int) bool    { return a < b }

func (v *view) bestDay() models.DayCount {
	if best := v.extreme(v.sortedDays("", ""), greater); best != nil {
		return *best
	}
	return models.DayCount{Day: "N/A", Count: 0}
}

func (v *view) quietestDay() *models.DayCount {
	return v.extreme(v.sortedDays("", ""), less)
}

func (v *view) mostActiveDayThisWeek() *models.DayCount {
	days := v.sortedDays(tracking.DayKey(v.weekStart()), tracking.DayKey(v.today))
	return v.extreme(days, greater)
}

func (v *view) todayHourly() []models.ChartPoint {
	day := tracking.DayKey(v.today)
	points := make([]models.ChartPoint, 24)
	for h := range 24 {
		points[h] = models.ChartPoint{
			Label: fmt.Sprintf("%02d:00", h),
			Count: v.state.Stats.Hourly[fmt.Sprintf("%s-%02d", day, h)],
		}
	}
	return points
}

// lastDays returns n daily points ending today, labeled with layout.
func (v *view) lastDays(n int, layout string) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := v.today.AddDate(0, 0, -i)
		points = append(points, models.ChartPoint{
			Label: day.Format(layout),
			Count: v.state.Stats.Daily[tracking.DayKey(day)],
		})
	}
	return points
}

func (v *view) lastSixMonths() []models.ChartPoint {
	byMonth := make(map[string]int)
	for day, count := range v.state.Stats.Daily {
		if len(day) == len(tracking.DayLayout) {
			byMonth[day[:7]] += count
		}
	}

	first := time.Date(v.today.Year(), v.today.Month(), 1, 0, 0, 0, 0, v.loc)
	points := make([]models.ChartPoint, 0, 6)
	for i := 5; i >= 0; i-- {
		month := first.AddDate(0, -i, 0)
		points = append(points, models.ChartPoint{
			Label: month.Format("Jan"),
			Count: byMonth[month.Format("2006-01")],
		})
	}
	return points
}

func (v *view) peakHour() models.HourCount {
	var byHour [24]int
	for key, count := range v.state.Stats.Hourly {
		if len(key) != len(tracking.HourLayout) {
			continue
		}
		hour, err := strconv.Atoi(key[len(key)-2:])
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		byHour[hour] += count
	}

	peak := models.HourCount{}
	for hour, total := range byHour {
		if total > peak.Count {
			peak = models.HourCount{Hour: hour, Count: total}
		}
	}
	return peak
}

func (v *view) averagePerHour() float64 {
	total, active := 0, 0
	for _, count := range v.state.Stats.Hourly {
		if count > 0 {
			total += count
			active++
		}
	}
	if active == 0 {
		return 0
	}
	return float64(total) / float64(active)
}

// currentStreak walks back from today. Today's zero does not end the streak
// because the day is still in progress; the first empty past day does.
func (v *view) currentStreak() int {
	streak := 0
	for day := v.today; ; day = day.AddDate(0, 0, -1) {
		if v.state.Stats.Daily[tracking.DayKey(day)] > 0 {
			streak++
			continue
		}
		if day.Equal(v.today) {
			continue
		}
		return streak
	}
}

func rank(counts map[string]int, limit int) []models.RankedEntry {
	entries := make([]models.RankedEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, models.RankedEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (v *view) categoryStats() []models.CategoryCount {
	sums := make(map[models.Category]int)
	for app, count := range v.state.Stats.Apps {
		sums[v.classifier.Classify(app, v.state.Stats.AppBundles[app])] += count
	}

	result := make([]models.CategoryCount, 0, len(sums))
	for _, cat := range models.AllCategories {
		if sums[cat] > 0 {
			result = append(result, models.CategoryCount{Category: cat, Count: sums[cat]})
		}
	}
	// Stable keeps priority order among equal counts.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

func (v *view) goalProgress() float64 {
	goal := v.state.Settings.DailyGoal
	if goal <= 0 {
		return 0
	}
	return float64(v.todayCount()) / float64(goal)
}

func (v *view) badge() models.Badge {
	streak := v.currentStreak()
	goal := v.state.Settings.DailyGoal
	switch {
	case streak >= unstoppableStreak:
		return models.BadgeUnstoppable
	case streak >= consistentStreak:
		return models.BadgeConsistent
	case goal > 0 && v.todayCount() >= goal:
		return models.BadgeGoalGetter
	default:
		return models.BadgeOnTheRise
	}
}

func (v *view) isInFlow() bool {
	active := 0
	for i := range flowWindowMinutes {
		key := tracking.MinuteKey(v.now.Add(-time.Duration(i) * time.Minute))
		if v.state.Stats.Minute[key] > flowMinKeystrokes {
			active++
		}
	}
	return active >= flowActiveMinutes
}

func (v *view) currentKPM() int {
	return v.state.Stats.Minute[tracking.MinuteKey(v.now)]
}

func (v *view) recentMinutes(n int) []models.ChartPoint {
	if n <= 0 {
		return nil
	}
	if n > models.MinuteRetention {
		n = models.MinuteRetention
	}
	points := make([]models.ChartPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := v.now.Add(-time.Duration(i) * time.Minute)
		points = append(points, models.ChartPoint{
			Label: t.Format("15:04"),
			Count: v.state.Stats.Minute[tracking.MinuteKey(t)],
		})
	}
	return points
}
