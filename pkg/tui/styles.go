package tui

import "github.com/charmbracelet/lipgloss"

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("108"))

	statusConnected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	statusOffline = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
