package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/typesteps/typesteps/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetSetting returns a setting value and whether it exists.
func (db *DB) GetSetting(key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(context.Background(),
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a setting value.
func (db *DB) SetSetting(key, value string) error {
	return setSetting(db, key, value)
}

func setSetting(e execer, key, value string) error {
	_, err := e.ExecContext(context.Background(), `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// LoadSettings reads the user settings, falling back to defaults for missing keys.
func (db *DB) LoadSettings() (models.Settings, error) {
	settings := models.DefaultSettings()

	if v, ok, err := db.GetSetting(SettingDailyGoal); err != nil {
		return settings, err
	} else if ok {
		if goal, convErr := strconv.Atoi(v); convErr == nil {
			settings.DailyGoal = goal
		}
	}

	if v, ok, err := db.GetSetting(SettingWakaTimeKey); err != nil {
		return settings, err
	} else if ok {
		settings.WakaTimeAPIKey = v
	}

	if v, ok, err := db.GetSetting(SettingTheme); err != nil {
		return settings, err
	} else if ok {
		if theme, convErr := strconv.Atoi(v); convErr == nil {
			settings.Theme = models.Theme(theme)
		}
	}

	return settings, nil
}

// SaveSettings stores all user settings.
func (db *DB) SaveSettings(settings models.Settings) error {
	return db.withTx(func(tx *sql.Tx) error {
		return saveSettings(tx, settings)
	})
}

func saveSettings(e execer, settings models.Settings) error {
	if err := setSetting(e, SettingDailyGoal, strconv.Itoa(settings.DailyGoal)); err != nil {
		return err
	}
	if err := setSetting(e, SettingWakaTimeKey, settings.WakaTimeAPIKey); err != nil {
		return err
	}
	return setSetting(e, SettingTheme, strconv.Itoa(int(settings.Theme)))
}

// GetSpoolOffset returns the persisted read offset of the capture spool.
func (db *DB) GetSpoolOffset() (int64, error) {
	v, ok, err := db.GetSetting(SettingSpoolOffset)
	if err != nil || !ok {
		return 0, err
	}
	offset, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return offset, nil
}

// SetSpoolOffset persists the read offset of the capture spool.
func (db *DB) SetSpoolOffset(offset int64) error {
	return db.SetSetting(SettingSpoolOffset, strconv.FormatInt(offset, 10))
}
