package models

// TimeRange selects the dashboard chart period.
type TimeRange int

const (
	// TimeRangeDay charts today's hours.
	TimeRangeDay TimeRange = iota
	// TimeRangeWeek charts the last seven days.
	TimeRangeWeek
	// TimeRangeMonth charts the last thirty days.
	TimeRangeMonth
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRangeDay:
		return "Day"
	case TimeRangeWeek:
		return "Week"
	case TimeRangeMonth:
		return "Month"
	default:
		return "Unknown"
	}
}

// Next cycles day -> week -> month -> day.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 3
}
