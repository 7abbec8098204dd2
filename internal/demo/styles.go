package demo

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#0EA5E9")
	colorMuted   = lipgloss.Color("#64748B")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	tagStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)

	errTagStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)
)
