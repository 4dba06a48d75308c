package ui

import "github.com/olivoil/nymview/internal/config"

// Theme holds the resolved color palette as hex strings.
type Theme struct {
	Foreground string
	Background string
	Accent     string
	Dim        string
	Red        string
	Green      string
	Yellow     string
	Blue       string
	Border     string
	Header     string
}

// T is the active theme. It is only changed through Apply.
var T = defaultTheme()

func init() { rebuild() }

// defaultTheme returns the built-in fallback theme.
func defaultTheme() Theme {
	return Theme{
		Foreground: "#e5e7eb",
		Background: "#1a1b26",
		Accent:     "#8b5cf6",
		Dim:        "#6b7280",
		Red:        "#ef4444",
		Green:      "#22c55e",
		Yellow:     "#eab308",
		Blue:       "#3b82f6",
		Border:     "#374151",
		Header:     "#f9fafb",
	}
}

// LoadTheme overlays the configured colors on the built-in theme.
func LoadTheme(c config.ThemeConfig) Theme {
	t := defaultTheme()
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&t.Foreground, c.Foreground},
		{&t.Background, c.Background},
		{&t.Accent, c.Accent},
		{&t.Dim, c.Dim},
		{&t.Red, c.Red},
		{&t.Green, c.Green},
		{&t.Yellow, c.Yellow},
		{&t.Blue, c.Blue},
		{&t.Border, c.Border},
		{&t.Header, c.Header},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	return t
}

// Apply makes t the active theme and rebuilds the shared styles. Call it
// from the UI goroutine only.
func Apply(t Theme) {
	T = t
	rebuild()
}
