package app

import (
	"time"

	"github.com/typesteps/typesteps/internal/models"
	"github.com/typesteps/typesteps/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SummaryLoadedMsg carries a recomputed summary and the settings it was
// computed against.
type SummaryLoadedMsg struct {
	Summary  models.Summary
	Settings models.Settings
}

// StatsUpdatedMsg tells tabs that the store changed and their series are stale.
type StatsUpdatedMsg struct {
	Today int
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "summary", "wakatime"
}

// WakaTimeRefreshedMsg contains the result of a manual WakaTime refresh.
type WakaTimeRefreshedMsg struct {
	Status models.WakaTimeStatus
	Error  error
}

// AdjustGoalMsg moves the daily goal by Steps increments.
type AdjustGoalMsg struct {
	Steps int
}

// CycleThemeMsg advances the theme setting.
type CycleThemeMsg struct{}

// SettingsChangedMsg carries the settings after a change.
type SettingsChangedMsg struct {
	Settings models.Settings
}

// ExportMsg requests exporting data.
type ExportMsg struct {
	Format string // "json" or "csv"
	Path   string
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Format string
	Path   string
	Error  error
}

// ResetMsg requests clearing all tracked statistics. Tabs send it only
// after the user confirmed.
type ResetMsg struct{}

// ResetResultMsg contains the result of a reset.
type ResetResultMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
