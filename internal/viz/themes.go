package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of terminal output.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Good    lipgloss.Color
	Warning lipgloss.Color
	Bad     lipgloss.Color
}

var (
	ThemeEmber = Theme{
		Name:    "ember",
		Primary: lipgloss.Color("#ff6b35"),
		Accent:  lipgloss.Color("#ffd23f"),
		Text:    lipgloss.Color("#f5f0e8"),
		Muted:   lipgloss.Color("#8b7d6b"),
		Border:  lipgloss.Color("#5c4033"),
		Good:    lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Bad:     lipgloss.Color("#ff4757"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#888888"),
		Border:  lipgloss.Color("#555555"),
		Good:    lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Bad:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Border:  lipgloss.Color("#1d3c5a"),
		Good:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Bad:     lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemeEmber

	Themes = []Theme{
		ThemeEmber,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to ember.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

// SetTheme changes the current theme and the package styles with it.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
