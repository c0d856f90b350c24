// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/typesteps/typesteps/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial  bool
	Summary  bool
	WakaTime bool
}

// State is shared between the root model and the tabs. The root model
// writes it from service events; tabs read it when rendering.
type State struct {
	mu sync.RWMutex

	Summary  models.Summary
	Settings models.Settings
	WakaTime models.WakaTimeStatus

	// Dirty is set when a keystroke landed after the last summary load.
	Dirty bool

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial state with the first load pending.
func NewState() *State {
	return &State{
		Settings:      models.DefaultSettings(),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "summary":
		s.Loading.Summary = loading
	case "wakatime":
		s.Loading.WakaTime = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Summary || s.Loading.WakaTime
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsLoading reports whether one resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case "initial":
		return s.Loading.Initial
	case "summary":
		return s.Loading.Summary
	case "wakatime":
		return s.Loading.WakaTime
	}
	return false
}

// SetSummary stores a freshly computed summary and clears the dirty flag.
func (s *State) SetSummary(summary models.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Summary = summary
	s.Dirty = false
	s.LastUpdated = time.Now()
}

// GetSummary returns the latest summary.
func (s *State) GetSummary() models.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Summary
}

// ApplyToday updates today's count in place from a live keystroke and marks
// the rest of the summary as stale.
func (s *State) ApplyToday(today int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Summary.Today = today
	if s.Summary.Goal > 0 {
		s.Summary.GoalProgress = float64(today) / float64(s.Summary.Goal)
	}
	s.Dirty = true
}

// IsDirty reports whether the summary is behind the store.
func (s *State) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dirty
}

// SetSettings stores the current settings.
func (s *State) SetSettings(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Settings = settings
	s.Summary.Goal = settings.DailyGoal
	if settings.DailyGoal > 0 {
		s.Summary.GoalProgress = float64(s.Summary.Today) / float64(settings.DailyGoal)
	} else {
		s.Summary.GoalProgress = 0
	}
}

// GetSettings returns the current settings.
func (s *State) GetSettings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Settings
}

// SetWakaTime stores the latest WakaTime reading.
func (s *State) SetWakaTime(status models.WakaTimeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WakaTime = status
}

// GetWakaTime returns the latest WakaTime reading.
func (s *State) GetWakaTime() models.WakaTimeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.WakaTime
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "toast-" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == id
	})
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.IsExpired()
	})
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}


// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time the summary was loaded.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}
