// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath            string
	SpoolPath               string
	LogPath                 string
	LogLevel                string
	MetricsAddr             string
	WakaTimeAPIKey          string
	WakaTimeBaseURL         string
	Location                *time.Location
	DailyGoal               int
	WakaTimeRefreshInterval time.Duration
}

// Default values
const (
	defaultWakaTimeRefreshInterval = 5 * time.Minute
	defaultLogLevel                = "info"
	appDirName                     = "typesteps"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	var defaultAPIKey string
	if waka := LoadWakaTimeConfig(); waka != nil {
		defaultAPIKey = waka.APIKey
	}

	loc, err := loadLocation(os.Getenv("TYPESTEPS_TIMEZONE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabasePath:            getEnvString("DATABASE_PATH", defaultPath("typesteps.db")),
		SpoolPath:               getEnvString("SPOOL_PATH", defaultPath("spool", "keystrokes.jsonl")),
		LogPath:                 getEnvString("LOG_PATH", defaultPath("typesteps.log")),
		LogLevel:                getEnvString("LOG_LEVEL", defaultLogLevel),
		MetricsAddr:             os.Getenv("METRICS_ADDR"),
		WakaTimeAPIKey:          getEnvString("WAKATIME_API_KEY", defaultAPIKey),
		WakaTimeBaseURL:         os.Getenv("WAKATIME_BASE_URL"),
		Location:                loc,
		DailyGoal:               getEnvInt("DAILY_GOAL", 0),
		WakaTimeRefreshInterval: getEnvDuration("WAKATIME_REFRESH_INTERVAL", defaultWakaTimeRefreshInterval),
	}

	if cfg.DailyGoal < 0 {
		return nil, fmt.Errorf("DAILY_GOAL must not be negative, got %d", cfg.DailyGoal)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure spool directory exists
	if err := ensureDir(filepath.Dir(cfg.SpoolPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadLocation resolves an IANA zone name. Empty means the system zone.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TYPESTEPS_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns a path under ~/.config/typesteps, or a relative path
// when the home directory is unknown.
func defaultPath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{home, ".config", appDirName}, elem...)...)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
