package tui

import (
	"github.com/charmbracelet/lipgloss"

	"lakemap/internal/mapview"
)

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	panelBg   = lipgloss.Color("#0F141A")
	borderCol = lipgloss.Color("#243141")
	alertCol  = lipgloss.Color("#B91C1C")

	// map palette, taken from the marker and boundary styles
	markerFill   = lipgloss.Color(mapview.LakeMarkerStyle.Fill)
	markerStroke = lipgloss.Color(mapview.LakeMarkerStyle.Stroke)
	boundaryFg   = lipgloss.Color(mapview.BoundaryStyle.Color)
	streetBg     = lipgloss.Color("#EEF2E6")
	streetGrid   = lipgloss.Color("#C9D1BF")
	satelliteBg  = lipgloss.Color("#1F2A1C")
	satelliteFg  = lipgloss.Color("#4B5B3F")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)

	panelStyle    = boxStyle.Background(panelBg)
	selectedStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	controlStyle  = lipgloss.NewStyle().Foreground(baseDimFg).Padding(0, 1)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(accentFg).Padding(0, 1)
	alertStyle    = boxStyle.BorderForeground(alertCol)
	popupStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#111111")).Background(markerFill).Padding(0, 1)
)
