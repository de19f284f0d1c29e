// Package styles provides shared lipgloss styles for UI components.
//
// This package centralizes color definitions and styling so the
// static and watch packages render divergence counts consistently.
package styles

import "charm.land/lipgloss/v2"

// Colors used throughout the UI
var (
	// Primary is the main accent color (cyan/teal)
	Primary = lipgloss.Color("62")

	// Accent is the highlight color for selected/active items (pink)
	Accent = lipgloss.Color("212")

	// Ahead is used for commits the compared branch is ahead by (green)
	Ahead = lipgloss.Color("82")

	// Behind is used for commits the compared branch is behind by (yellow)
	Behind = lipgloss.Color("214")

	// Error is used for error messages (red)
	Error = lipgloss.Color("196")

	// Muted is used for secondary text (gray)
	Muted = lipgloss.Color("240")

	// Info is used for informational text (gray)
	Info = lipgloss.Color("244")
)

// Common styles
var (
	// Bold applies bold formatting
	Bold = lipgloss.NewStyle().Bold(true)

	// TitleStyle renders headings in the primary color
	TitleStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// AccentStyle highlights the selected row
	AccentStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	// AheadStyle renders ahead counts
	AheadStyle = lipgloss.NewStyle().Foreground(Ahead)

	// BehindStyle renders behind counts
	BehindStyle = lipgloss.NewStyle().Foreground(Behind)

	// ErrorStyle renders error messages
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	// MutedStyle renders secondary text
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)

	// InfoStyle renders help lines
	InfoStyle = lipgloss.NewStyle().Foreground(Info).Italic(true)

	// HighlightStyle marks characters matched by the filter
	HighlightStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).Underline(true)
)
