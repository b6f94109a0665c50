package tui

import (
	"github.com/charmbracelet/lipgloss"

	"geolayers/internal/ingest"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	errorFg   = lipgloss.Color("#F87171")
	successFg = lipgloss.Color("#34D399")
	infoFg    = lipgloss.Color("#60A5FA")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
)

func toastStyle(s ingest.Severity) lipgloss.Style {
	switch s {
	case ingest.Error:
		return lipgloss.NewStyle().Foreground(errorFg).Bold(true)
	case ingest.Success:
		return lipgloss.NewStyle().Foreground(successFg)
	}
	return lipgloss.NewStyle().Foreground(infoFg)
}
