package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("genchat " + a.deps.Version)

	blue := lipgloss.NewStyle().Foreground(accentColor)

	generate := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Generate"),
		"• text           Send a chat message",
		"• /image <p>     Generate an image",
		"• /video <p>     Generate a video",
		"• /video --ref <file> <p>",
		"                 Video from a reference image",
		"• /retry         Rerun the last failure",
		"• /cancel        Cancel running requests",
	)

	messages := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Messages"),
		"• /delete <n>    Delete message n",
		"• /clear         Clear this session",
		"• /copy          Copy last response",
		"• //text         Send text starting with /",
	)

	sessions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Sessions"),
		"• /new           New session",
		"• /sessions      List sessions",
		"• /open <n>      Open listed session n",
		"• /rename <t>    Rename this session",
		"• /export [file] Export as JSON",
		"• /search <q>    Search all sessions",
	)

	keys := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Keys"),
		"• Enter          Send",
		"• Alt+Enter      New line",
		"• Esc            Dismiss error or close",
		"• Ctrl+X         Cancel requests",
		"• PgUp/PgDn      Scroll",
		"• F1             Toggle this help",
		"• Ctrl+C         Quit",
	)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, generate, "", messages)),
		"    ",
		columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sessions, "", keys)),
	)

	footer := DimStyle.Render("Press F1 or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
