// Package styles provides shared lipgloss styles for terminal output.
package styles

import "charm.land/lipgloss/v2"

// Palette colors used throughout terminal output.
var (
	Warning lipgloss.TerminalColor = lipgloss.Color("214")
	Error   lipgloss.TerminalColor = lipgloss.Color("196")
	Success lipgloss.TerminalColor = lipgloss.Color("82")
	Muted   lipgloss.TerminalColor = lipgloss.Color("240")
)

var (
	// WarningStyle marks non-fatal conditions: timeouts, failed background tasks.
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)

	// ErrorStyle marks fatal conditions reported just before exit.
	ErrorStyle = lipgloss.NewStyle().Foreground(Error)

	// SuccessStyle marks a completed operation (switch created, merge finished).
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)

	// MutedStyle de-emphasizes secondary detail (paths, hints).
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
)
