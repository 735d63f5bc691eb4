// Package tui implements the interactive proposal review surface.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#059669") // Emerald
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	ColorText       = lipgloss.Color("#E5E7EB") // Light gray
	ColorTextMuted  = lipgloss.Color("#9CA3AF") // Muted gray
	ColorBorder     = lipgloss.Color("#374151") // Dark gray
	ColorBackground = lipgloss.Color("#1F2937") // Dark background
	ColorHighlight  = lipgloss.Color("#374151") // Selection
)
