package tracking

import "time"

// Bucket key layouts. Keys sort lexicographically in chronological order.
const (
	DayLayout    = "2006-01-02"
	HourLayout   = "2006-01-02-15"
	MinuteLayout = "2006-01-02-15-04"
)

// DayKey returns the day bucket key for t in its own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// HourKey returns the hour bucket key for t in its own location.
func HourKey(t time.Time) string {
	return t.Format(HourLayout)
}

// MinuteKey returns the minute bucket key for t in its own location.
func MinuteKey(t time.Time) string {
	return t.Format(MinuteLayout)
}

// ParseDayKey parses a day key as midnight in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, key, loc)
}

// ValidKey reports whether key matches layout exactly.
func ValidKey(layout, key string) bool {
	if len(key) != len(layout) {
		return false
	}
	_, err := time.Parse(layout, key)
	return err == nil
}
