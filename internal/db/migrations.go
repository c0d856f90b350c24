package db

import (
	"context"
	"fmt"

	"github.com/typesteps/typesteps/internal/models"
)

// currentSchemaVersion is stored in PRAGMA user_version.
const currentSchemaVersion = 1

// migrate upgrades an existing database to the current schema version.
func (db *DB) migrate() error {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read user_version: %w", err)
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := db.trimMinuteStats(); err != nil {
			return err
		}
	}

	_, err := db.ExecContext(context.Background(),
		fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion))
	return err
}

// trimMinuteStats drops minute buckets beyond the retention bound. Databases
// written before the bound existed may hold more.
func (db *DB) trimMinuteStats() error {
	query := `
		DELETE FROM minute_stats
		WHERE key NOT IN (
			SELECT key FROM minute_stats ORDER BY key DESC LIMIT ?
		)
	`
	if _, err := db.ExecContext(context.Background(), query, models.MinuteRetention); err != nil {
		return fmt.Errorf("failed to trim minute stats: %w", err)
	}
	return nil
}
