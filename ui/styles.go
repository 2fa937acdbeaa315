package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	UserStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Pending placeholders
	PendingStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Italic(true)

	FailedStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	ErrorBarStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	MediaStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)
)

// FormatFooter joins alternating keys and descriptions.
// FormatFooter("Enter", "Send", "Esc", "Dismiss") renders "Enter Send  Esc Dismiss"
// with the descriptions in bold accent.
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
