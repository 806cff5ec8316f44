package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("#6C6C6C")
	colorError  = lipgloss.Color("#E06C75")

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle          = lipgloss.NewStyle().Foreground(colorMuted)
	errorTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	statusStyle         = lipgloss.NewStyle().PaddingLeft(1)
)
