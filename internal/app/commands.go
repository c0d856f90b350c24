package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/typesteps/typesteps/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks. Live
	// keystrokes are coalesced into one summary reload per tick.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	wakaTimeTimeout = 30 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadSummaryCmd recomputes the dashboard summary from the store.
func loadSummaryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return SummaryLoadedMsg{
			Summary:  mgr.Analytics().Summary(),
			Settings: mgr.Settings(),
		}
	}
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadSummaryCmd(mgr),
		func() tea.Msg {
			return WakaTimeRefreshedMsg{Status: mgr.WakaTimeStatus()}
		},
	)
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// refreshWakaTimeCmd fetches today's coding minutes.
func refreshWakaTimeCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), wakaTimeTimeout)
		defer cancel()

		status, err := mgr.RefreshWakaTime(ctx)
		return WakaTimeRefreshedMsg{Status: status, Error: err}
	}
}

// adjustGoalCmd moves the daily goal by whole steps.
func adjustGoalCmd(mgr *services.Manager, steps int) tea.Cmd {
	return func() tea.Msg {
		if _, err := mgr.AdjustDailyGoal(steps); err != nil {
			return ErrorMsg{Error: err, Context: "daily goal"}
		}
		return SettingsChangedMsg{Settings: mgr.Settings()}
	}
}

// cycleThemeCmd switches to the next theme.
func cycleThemeCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if _, err := mgr.CycleTheme(); err != nil {
			return ErrorMsg{Error: err, Context: "theme"}
		}
		return SettingsChangedMsg{Settings: mgr.Settings()}
	}
}

// exportCmd writes a JSON backup or a CSV of daily totals.
func exportCmd(mgr *services.Manager, format, path string) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch format {
		case "csv":
			err = mgr.ExportCSV(path)
		default:
			format = "json"
			err = mgr.Export(path)
		}
		return ExportResultMsg{Format: format, Path: path, Error: err}
	}
}

// resetCmd clears all tracked statistics.
func resetCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ResetResultMsg{Error: mgr.Reset()}
	}
}

// DefaultExportPath places exports next to the database, named by time.
func DefaultExportPath(dir, format string, now time.Time) string {
	ext := "json"
	name := "typesteps-backup"
	if format == "csv" {
		ext = "csv"
		name = "typesteps-daily"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", name, now.Format("20060102-150405"), ext))
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifyDurations sets how long each kind of toast stays up.
var notifyDurations = map[NotificationType]time.Duration{
	NotificationSuccess: DefaultNotificationDuration,
	NotificationError:   LongNotificationDuration,
	NotificationWarning: DefaultNotificationDuration,
	NotificationInfo:    QuickNotificationDuration,
}

// notifyCmd returns a command that adds a toast of the given type.
func notifyCmd(t NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: notifyDurations[t]}
	}
}
