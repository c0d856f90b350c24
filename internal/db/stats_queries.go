package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/typesteps/typesteps/internal/logger"
	"github.com/typesteps/typesteps/internal/models"
)

// LoadState reads every counter, the notified milestones and the settings.
// Minute buckets beyond the retention bound are deleted before loading.
func (db *DB) LoadState() (models.State, error) {
	state := models.NewState()

	if err := db.trimMinuteStats(); err != nil {
		return state, err
	}

	targets := map[string]map[string]int{
		tableDaily:    state.Stats.Daily,
		tableHourly:   state.Stats.Hourly,
		tableMinute:   state.Stats.Minute,
		tableApps:     state.Stats.Apps,
		tableProjects: state.Stats.Projects,
	}
	for table, target := range targets {
		if err := db.loadCounts(table, target); err != nil {
			return state, err
		}
	}

	if err := db.loadBundles(state.Stats.AppBundles); err != nil {
		return state, err
	}

	notified, err := db.GetNotifiedMilestones()
	if err != nil {
		return state, err
	}
	state.Notified = notified

	settings, err := db.LoadSettings()
	if err != nil {
		return state, err
	}
	state.Settings = settings

	return state, nil
}

func (db *DB) loadCounts(table string, target map[string]int) error {
	rows, err := db.QueryContext(context.Background(),
		fmt.Sprintf("SELECT key, count FROM %s", table))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		target[key] = count
	}
	return rows.Err()
}

func (db *DB) loadBundles(target map[string]string) error {
	rows, err := db.QueryContext(context.Background(), "SELECT app, bundle_id FROM app_bundles")
	if err != nil {
		return fmt.Errorf("failed to query app bundles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var app, bundle string
		if err := rows.Scan(&app, &bundle); err != nil {
			return fmt.Errorf("failed to scan app bundle: %w", err)
		}
		target[app] = bundle
	}
	return rows.Err()
}

// GetNotifiedMilestones returns the notified fractions per day, ascending.
func (db *DB) GetNotifiedMilestones() (map[string][]float64, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT day, fraction FROM notified_milestones ORDER BY day, fraction")
	if err != nil {
		return nil, fmt.Errorf("failed to query notified milestones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]float64)
	for rows.Next() {
		var day string
		var fraction float64
		if err := rows.Scan(&day, &fraction); err != nil {
			return nil, fmt.Errorf("failed to scan notified milestone: %w", err)
		}
		result[day] = append(result[day], fraction)
	}
	return result, rows.Err()
}

// SaveIncrement applies one keystroke to every counter table in a single
// transaction, including removal of evicted minute buckets.
func (db *DB) SaveIncrement(inc models.Increment) error {
	return db.withTx(func(tx *sql.Tx) error {
		buckets := []struct {
			table string
			key   string
		}{
			{tableDaily, inc.Day},
			{tableHourly, inc.Hour},
			{tableMinute, inc.Minute},
			{tableApps, inc.App},
			{tableProjects, inc.Project},
		}
		for _, b := range buckets {
			if b.key == "" {
				continue
			}
			if _, err := tx.ExecContext(context.Background(),
				fmt.Sprintf(sqlUpsertCount, b.table), b.key); err != nil {
				return fmt.Errorf("failed to increment %s: %w", b.table, err)
			}
		}

		if inc.App != "" && inc.Bundle != "" {
			if _, err := tx.ExecContext(context.Background(), `
				INSERT INTO app_bundles (app, bundle_id) VALUES (?, ?)
				ON CONFLICT(app) DO UPDATE SET bundle_id = excluded.bundle_id
			`, inc.App, inc.Bundle); err != nil {
				return fmt.Errorf("failed to save app bundle: %w", err)
			}
		}

		for _, key := range inc.Evicted {
			if _, err := tx.ExecContext(context.Background(),
				"DELETE FROM minute_stats WHERE key = ?", key); err != nil {
				return fmt.Errorf("failed to evict minute bucket: %w", err)
			}
		}
		return nil
	})
}

// ReplaceState overwrites all counters, notified milestones and settings.
func (db *DB) ReplaceState(state models.State) error {
	return db.withTx(func(tx *sql.Tx) error {
		if err := clearTracking(tx); err != nil {
			return err
		}

		sources := map[string]map[string]int{
			tableDaily:    state.Stats.Daily,
			tableHourly:   state.Stats.Hourly,
			tableMinute:   state.Stats.Minute,
			tableApps:     state.Stats.Apps,
			tableProjects: state.Stats.Projects,
		}
		for table, counts := range sources {
			query := fmt.Sprintf("INSERT INTO %s (key, count) VALUES (?, ?)", table)
			for key, count := range counts {
				if _, err := tx.ExecContext(context.Background(), query, key, count); err != nil {
					return fmt.Errorf("failed to insert into %s: %w", table, err)
				}
			}
		}

		for app, bundle := range state.Stats.AppBundles {
			if _, err := tx.ExecContext(context.Background(),
				"INSERT INTO app_bundles (app, bundle_id) VALUES (?, ?)", app, bundle); err != nil {
				return fmt.Errorf("failed to insert app bundle: %w", err)
			}
		}

		for day, fractions := range state.Notified {
			for _, fraction := range fractions {
				if _, err := tx.ExecContext(context.Background(),
					"INSERT OR IGNORE INTO notified_milestones (day, fraction) VALUES (?, ?)",
					day, fraction); err != nil {
					return fmt.Errorf("failed to insert notified milestone: %w", err)
				}
			}
		}

		return saveSettings(tx, state.Settings)
	})
}

// ClearTracking removes every counter and notified milestone. Settings are kept.
func (db *DB) ClearTracking() error {
	if err := db.withTx(clearTracking); err != nil {
		return err
	}
	if err := db.Vacuum(); err != nil {
		logger.Warn("failed to vacuum after reset", "error", err)
	}
	return nil
}

func clearTracking(tx *sql.Tx) error {
	tables := append(append([]string{}, counterTables...), "app_bundles", "notified_milestones")
	for _, table := range tables {
		if _, err := tx.ExecContext(context.Background(), "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// AddNotifiedMilestone records that a milestone fraction fired for a day.
func (db *DB) AddNotifiedMilestone(day string, fraction float64) error {
	_, err := db.ExecContext(context.Background(),
		"INSERT OR IGNORE INTO notified_milestones (day, fraction) VALUES (?, ?)", day, fraction)
	if err != nil {
		return fmt.Errorf("failed to record notified milestone: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
