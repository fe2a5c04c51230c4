package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, as ANSI codes for broad terminal
// compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// DisableColors forces monochrome output for every style built after the
// call. Used by the --no-color flag and when stdout is not a terminal.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
