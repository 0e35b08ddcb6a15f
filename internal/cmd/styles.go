package cmd

import (
	"jira-lite/internal/issuestorage"

	"github.com/charmbracelet/lipgloss"
)

// Ayu palette, adaptive to light and dark terminals.
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorAmber = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorBlue  = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorMuted = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

var (
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(colorAmber)
	headingStyle = lipgloss.NewStyle().Bold(true)
)

var statusStyles = map[issuestorage.Status]lipgloss.Style{
	issuestorage.StatusOpen:       lipgloss.NewStyle().Foreground(colorBlue),
	issuestorage.StatusInProgress: lipgloss.NewStyle().Foreground(colorAmber).Bold(true),
	issuestorage.StatusResolved:   lipgloss.NewStyle().Foreground(colorGreen),
	issuestorage.StatusClosed:     lipgloss.NewStyle().Foreground(colorMuted),
}

func statusStyle(s issuestorage.Status) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
