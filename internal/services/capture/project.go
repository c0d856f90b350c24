package capture

import "strings"

const (
	emDashSep  = " — "
	enDashSep  = " – "
	hyphenSep  = " - "
	dirtyMark  = "● "
	bracketSep = " ["
)

var vscodeFamily = []string{"visual studio code", "code", "code - insiders", "vscodium", "cursor", "windsurf"}

var vscodeBundles = []string{"com.microsoft.vscode", "com.vscodium", "com.todesktop.", "com.exafunction.windsurf"}

var jetbrainsApps = []string{
	"intellij idea", "goland", "pycharm", "webstorm", "clion", "rider",
	"phpstorm", "rubymine", "rustrover", "datagrip", "android studio",
}

// ParseProject guesses the project from an editor window title. It returns ""
// for applications it does not know.
//
//	VS Code family: "main.go — typesteps — Visual Studio Code" -> "typesteps"
//	Xcode:          "typesteps — Store.swift"                  -> "typesteps"
//	JetBrains:      "typesteps [~/src/typesteps] – main.go"    -> "typesteps"
func ParseProject(app, bundle, title string) string {
	title = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(title), dirtyMark))
	if title == "" {
		return ""
	}

	lowerApp := strings.ToLower(app)
	lowerBundle := strings.ToLower(bundle)

	switch {
	case isVSCode(lowerApp, lowerBundle):
		return vscodeProject(title)
	case lowerApp == "xcode" || lowerBundle == "com.apple.dt.xcode":
		return firstSegment(title, emDashSep)
	case isJetBrains(lowerApp, lowerBundle):
		return jetbrainsProject(title)
	}
	return ""
}

func isVSCode(app, bundle string) bool {
	for _, name := range vscodeFamily {
		if app == name {
			return true
		}
	}
	for _, prefix := range vscodeBundles {
		if strings.HasPrefix(bundle, prefix) {
			return true
		}
	}
	return false
}

func isJetBrains(app, bundle string) bool {
	if strings.HasPrefix(bundle, "com.jetbrains.") || strings.HasPrefix(bundle, "com.google.android.studio") {
		return true
	}
	for _, name := range jetbrainsApps {
		if strings.HasPrefix(app, name) {
			return true
		}
	}
	return false
}

// vscodeProject returns the workspace segment, which precedes the
// application suffix.
func vscodeProject(title string) string {
	segments := splitTitle(title, emDashSep)
	if len(segments) < 2 {
		segments = splitTitle(title, hyphenSep)
	}
	if len(segments) < 2 {
		return ""
	}
	project := segments[len(segments)-2]
	if i := strings.Index(project, bracketSep); i > 0 {
		project = strings.TrimSpace(project[:i])
	}
	return project
}

func jetbrainsProject(title string) string {
	project := title
	if i := strings.Index(project, enDashSep); i > 0 {
		project = project[:i]
	} else if !strings.Contains(project, bracketSep) {
		return ""
	}
	if i := strings.Index(project, bracketSep); i >= 0 {
		project = project[:i]
	}
	return strings.TrimSpace(project)
}

// firstSegment returns the text before sep, or "" when sep is absent.
func firstSegment(title, sep string) string {
	i := strings.Index(title, sep)
	if i <= 0 {
		return ""
	}
	return strings.TrimSpace(title[:i])
}

func splitTitle(title, sep string) []string {
	parts := strings.Split(title, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
