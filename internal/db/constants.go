package db

// Counter table names.
const (
	tableDaily    = "daily_stats"
	tableHourly   = "hourly_stats"
	tableMinute   = "minute_stats"
	tableApps     = "app_stats"
	tableProjects = "project_stats"
)

var counterTables = []string{tableDaily, tableHourly, tableMinute, tableApps, tableProjects}

// Settings keys.
const (
	SettingDailyGoal   = "daily_goal"
	SettingWakaTimeKey = "wakatime_api_key"
	SettingTheme       = "theme"
	SettingSpoolOffset = "spool_offset"
)

// sqlUpsertCount increments a counter row, creating it on first use.
const sqlUpsertCount = `INSERT INTO %s (key, count) VALUES (?, 1)
	ON CONFLICT(key) DO UPDATE SET count = count + 1`
