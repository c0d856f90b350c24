package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// WakaTimeConfig holds the values read from the WakaTime CLI config file.
type WakaTimeConfig struct {
	APIKey string
}

var (
	sectionRe = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*$`)
	apiKeyRe  = regexp.MustCompile(`^\s*api_key\s*=\s*(\S+)\s*$`)
)

func getWakaTimeConfigPath() string {
	if home := os.Getenv("WAKATIME_HOME"); home != "" {
		return filepath.Join(home, ".wakatime.cfg")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wakatime.cfg")
}

// LoadWakaTimeConfig reads ~/.wakatime.cfg. It returns nil when the file is
// missing or holds no API key.
func LoadWakaTimeConfig() *WakaTimeConfig {
	path := getWakaTimeConfigPath()
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	return parseWakaTimeConfig(string(content))
}

// parseWakaTimeConfig reads api_key from the [settings] section.
func parseWakaTimeConfig(content string) *WakaTimeConfig {
	cfg := &WakaTimeConfig{}
	section := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if match := sectionRe.FindStringSubmatch(line); len(match) > 1 {
			section = strings.TrimSpace(match[1])
			continue
		}
		if section != "settings" {
			continue
		}
		if match := apiKeyRe.FindStringSubmatch(line); len(match) > 1 {
			cfg.APIKey = match[1]
		}
	}

	if cfg.APIKey == "" {
		return nil
	}

	return cfg
}
