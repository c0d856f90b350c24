// Package category maps applications to coarse activity categories.
package category

import (
	"strings"

	"github.com/typesteps/typesteps/internal/models"
)

// rule holds the matching tables for one category. All entries are lower case.
type rule struct {
	category models.Category
	// exact matches the whole app name. Short or ambiguous names live here
	// so they do not match inside unrelated names.
	exact []string
	// contains matches anywhere in the app name.
	contains []string
	// bundlePrefixes match the start of the bundle identifier.
	bundlePrefixes []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		category: models.CategoryCode,
		exact:    []string{"code", "zed", "nova", "vim", "nvim", "emacs", "kitty", "warp", "helix"},
		contains: []string{
			"visual studio", "xcode", "intellij", "pycharm", "goland", "webstorm", "clion",
			"rider", "android studio", "sublime", "cursor", "windsurf", "terminal", "iterm",
			"alacritty", "wezterm", "ghostty", "neovim", "fleet", "rubymine", "phpstorm",
			"datagrip", "tableplus", "postman", "github desktop", "sourcetree", "tower",
		},
		bundlePrefixes: []string{
			"com.microsoft.vscode", "com.apple.dt.xcode", "com.jetbrains.", "com.sublimetext.",
			"com.todesktop.", "dev.zed.", "com.exafunction.windsurf", "com.apple.terminal",
			"com.googlecode.iterm2", "io.alacritty", "com.github.wez.wezterm", "com.mitchellh.ghostty",
			"dev.warp.", "net.kovidgoyal.kitty", "com.panic.nova",
		},
	},
	{
		category: models.CategoryCommunicate,
		exact:    []string{"mail", "messages", "signal", "teams", "zoom", "spark", "mimestream"},
		contains: []string{
			"slack", "discord", "telegram", "whatsapp", "microsoft teams", "outlook",
			"thunderbird", "airmail", "superhuman", "skype", "element", "messenger", "zoom.us",
		},
		bundlePrefixes: []string{
			"com.tinyspeck.slackmacgap", "com.hnc.discord", "ru.keepcoder.telegram",
			"org.telegram.", "net.whatsapp.", "com.microsoft.teams", "com.microsoft.outlook",
			"com.apple.mail", "com.apple.mobilesms", "us.zoom.", "org.whispersystems.signal",
		},
	},
	{
		category: models.CategoryCreate,
		exact:    []string{"pages", "word", "keynote", "notes", "bear", "ulysses", "craft", "excel"},
		contains: []string{
			"figma", "sketch", "photoshop", "illustrator", "affinity", "blender", "final cut",
			"logic pro", "premiere", "after effects", "notion", "obsidian", "microsoft word",
			"google docs", "scrivener", "ia writer", "typora", "pixelmator", "canva",
			"davinci resolve", "garageband", "powerpoint", "numbers",
		},
		bundlePrefixes: []string{
			"com.figma.", "com.bohemiancoding.sketch", "com.adobe.", "com.seriflabs.",
			"org.blenderfoundation.", "com.apple.finalcut", "com.apple.logic", "notion.id",
			"md.obsidian", "com.microsoft.word", "com.microsoft.excel", "com.microsoft.powerpoint",
			"com.apple.iwork.", "com.apple.notes", "net.shinyfrog.bear", "com.ulyssesapp.",
		},
	},
	{
		category: models.CategoryBrowsing,
		exact:    []string{"arc", "edge", "opera", "orion"},
		contains: []string{
			"safari", "chrome", "chromium", "firefox", "brave", "vivaldi", "microsoft edge",
			"duckduckgo", "tor browser", "zen browser",
		},
		bundlePrefixes: []string{
			"com.apple.safari", "com.google.chrome", "org.chromium.", "org.mozilla.firefox",
			"com.brave.browser", "com.vivaldi.", "com.microsoft.edgemac", "company.thebrowser.",
			"com.operasoftware.", "com.kagi.kagimacos", "app.zen-browser.",
		},
	},
	{
		category: models.CategoryUtility,
		exact:    []string{"finder", "raycast", "alfred", "spotlight", "1password", "calculator"},
		contains: []string{
			"system settings", "system preferences", "activity monitor", "preview",
			"bitwarden", "keychain", "disk utility", "archive utility", "cleanmymac",
			"calendar", "reminders", "fantastical", "things", "todoist", "spotify", "music",
		},
		bundlePrefixes: []string{
			"com.apple.finder", "com.raycast.", "com.runningwithcrayons.alfred",
			"com.apple.systempreferences", "com.apple.activitymonitor", "com.apple.preview",
			"com.1password.", "com.agilebits.", "com.bitwarden.", "com.apple.ical",
			"com.apple.reminders", "com.culturedcode.things", "com.spotify.", "com.apple.music",
		},
	},
}

// Classify returns the category for an app name and optional bundle identifier.
// Matching is case-insensitive. The name tables are consulted before the bundle table
// within each category, and categories are checked in priority order.
func Classify(appName, bundleID string) models.Category {
	name := strings.ToLower(strings.TrimSpace(appName))
	bundle := strings.ToLower(strings.TrimSpace(bundleID))

	if name == "" && bundle == "" {
		return models.CategoryOther
	}

	for _, r := range rules {
		if r.matches(name, bundle) {
			return r.category
		}
	}
	return models.CategoryOther
}

func (r rule) matches(name, bundle string) bool {
	if name != "" {
		for _, e := range r.exact {
			if name == e {
				return true
			}
		}
		for _, c := range r.contains {
			if strings.Contains(name, c) {
				return true
			}
		}
	}
	if bundle != "" {
		for _, p := range r.bundlePrefixes {
			if strings.HasPrefix(bundle, p) {
				return true
			}
		}
	}
	return false
}
