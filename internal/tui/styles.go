package tui

import "github.com/charmbracelet/lipgloss"

// Icons
const (
	iconDot          = "●"
	iconDotHollow    = "○"
	iconCheck        = "✓"
	iconCross        = "✗"
	iconChevronRight = "›"
	iconFlag         = "⚑"
	iconQuestion     = "?"
)

// Base styles
var (
	// HeaderStyle is the top title bar.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	// FooterStyle is the key help line at the bottom.
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	// Mode banner styles
	BannerLiveStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true).
			Padding(0, 1)

	BannerBlockedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ColorError).
				Bold(true).
				Padding(0, 1)

	BannerLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true).
				Padding(0, 1)

	// Cluster and event rows
	ClusterRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	EventRowStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			PaddingLeft(2)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorHighlight).
				Bold(true)

	// Badges
	SafeBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	RiskBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	QuestionBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	// Detail pane
	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted)

	DetailValueStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	DetailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				MarginBottom(1)

	// Notices
	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	NoticeErrStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	// Confirm modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(1, 2)

	ModalDangerStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorError).
				Padding(1, 2)

	// Inline inputs (reject reason, filter, workspace)
	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	// HelpStyle is for secondary hint text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	// ErrorStyle is for full-screen error display.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(1, 2)

	// SpinnerStyle colors the busy spinner.
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)
