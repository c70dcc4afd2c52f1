package plotpage

import (
	"fmt"
	"strings"
)

// Theme is the color scheme of a rendered page.
type Theme string

const (
	// ThemeLight is the white-paper theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark theme.
	ThemeDark Theme = "dark"
)

// ParseTheme resolves a theme name. Empty means light.
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case "", ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds the page and chart colors of a theme.
type ThemeConfig struct {
	Background string
	Surface    string
	Border     string

	TextPrimary string
	TextMuted   string
	Accent      string

	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// Ink is the default color of "black" marks, so they stay visible
	// on a dark background.
	Ink string
}

// ChartPalette is the series color cycle of a theme.
type ChartPalette struct {
	Primary []string
}

// Color returns the i-th palette color, cycling.
func (p ChartPalette) Color(i int) string {
	return p.Primary[i%len(p.Primary)]
}

// GetThemeConfig returns the configuration for a given theme.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

// GetChartPalette returns the chart color palette for a given theme.
func GetChartPalette(theme Theme) ChartPalette {
	if theme == ThemeDark {
		return darkChartPalette
	}

	return lightChartPalette
}

var lightTheme = ThemeConfig{
	Background: "#ffffff",
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.
	Accent:      "#a16207", // amber-700.

	ChartBackground: "#ffffff",
	ChartGrid:       "#e7e5e4", // stone-200.
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#1c1917", // stone-900.
	ChartTextMuted:  "#44403c", // stone-700.

	Ink: "black",
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary: "#fafaf9", // stone-50.
	TextMuted:   "#a8a29e", // stone-400.
	Accent:      "#d97706", // amber-600.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c", // stone-700.
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#fafaf9", // stone-50.
	ChartTextMuted:  "#d6d3d1", // stone-300.

	Ink: "#e7e5e4", // stone-200.
}

// Seaborn's "deep" cycle on white.
var lightChartPalette = ChartPalette{
	Primary: []string{
		"#4c72b0",
		"#dd8452",
		"#55a868",
		"#c44e52",
		"#8172b3",
		"#937860",
		"#da8bc3",
		"#8c8c8c",
		"#ccb974",
		"#64b5cd",
	},
}

var darkChartPalette = ChartPalette{
	Primary: []string{
		"#38bdf8", // sky-400.
		"#fb923c", // orange-400.
		"#4ade80", // green-400.
		"#f87171", // red-400.
		"#a78bfa", // violet-400.
		"#fbbf24", // amber-400.
		"#f472b6", // pink-400.
		"#22d3ee", // cyan-400.
		"#a3e635", // lime-400.
		"#818cf8", // indigo-400.
	},
}
