package ui

import (
	"image/color"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/olivoil/nymview/internal/backend"
)

var (
	ColorGreen  color.Color
	ColorRed    color.Color
	ColorYellow color.Color
	ColorBlue   color.Color
	ColorDim    color.Color
	ColorWhite  color.Color
	ColorBorder color.Color
	ColorAccent color.Color
	ColorHeader color.Color

	StyleHeader       lipgloss.Style
	StyleActive       lipgloss.Style
	StyleInactive     lipgloss.Style
	StyleDim          lipgloss.Style
	StyleAccent       lipgloss.Style
	StyleError        lipgloss.Style
	StyleWarn         lipgloss.Style
	StylePanel        lipgloss.Style
	StylePanelFocused lipgloss.Style
	StyleSelected     lipgloss.Style
)

func rebuild() {
	ColorGreen = lipgloss.Color(T.Green)
	ColorRed = lipgloss.Color(T.Red)
	ColorYellow = lipgloss.Color(T.Yellow)
	ColorBlue = lipgloss.Color(T.Blue)
	ColorDim = lipgloss.Color(T.Dim)
	ColorWhite = lipgloss.Color(T.Foreground)
	ColorBorder = lipgloss.Color(T.Border)
	ColorAccent = lipgloss.Color(T.Accent)
	ColorHeader = lipgloss.Color(T.Header)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader)

	StyleActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorGreen)

	StyleInactive = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorRed)

	StyleDim = lipgloss.NewStyle().
		Foreground(ColorDim)

	StyleAccent = lipgloss.NewStyle().
		Foreground(ColorAccent)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorRed)

	StyleWarn = lipgloss.NewStyle().
		Foreground(ColorYellow)

	StylePanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StylePanelFocused = StylePanel.
		BorderForeground(ColorAccent)

	StyleSelected = lipgloss.NewStyle().
		Foreground(lipgloss.Color(T.Background)).
		Background(ColorAccent)
}

// StatusIcon returns an icon for a connection state.
func StatusIcon(state backend.ConnState) string {
	switch state {
	case backend.Connected:
		return lipgloss.NewStyle().Foreground(ColorGreen).Render("●")
	case backend.Connecting:
		return lipgloss.NewStyle().Foreground(ColorYellow).Render("◌")
	case backend.Failed:
		return lipgloss.NewStyle().Foreground(ColorRed).Render("✕")
	default:
		return " "
	}
}

// StatusStyle returns the style the connection status text is drawn in.
func StatusStyle(state backend.ConnState) lipgloss.Style {
	switch state {
	case backend.Connected:
		return StyleActive
	case backend.Failed:
		return StyleInactive
	default:
		return StyleWarn
	}
}

// FormatTime formats a timestamp into a short time string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	t = t.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04:05")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 02")
}

// FormatElapsed formats how long something has been running, to the second.
func FormatElapsed(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
