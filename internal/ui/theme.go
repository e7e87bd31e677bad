package ui

import "github.com/charmbracelet/lipgloss"

// Violet accent shared by the root-level views.
var (
	accent = lipgloss.Color("#7D56F4")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	MetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#828282"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)
