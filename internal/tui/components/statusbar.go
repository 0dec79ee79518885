package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, msg in
// the middle, info on the right. isErr colors msg as an error.
func RenderStatusBar(width int, msg string, isErr bool, info string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	if isErr {
		msgStyle = msgStyle.Foreground(t.Expense)
	}

	left := base.Render(" [?]help  [a]dd  [P]ost due  [q]uit")
	if msg != "" {
		left += base.Render("  ") + msgStyle.Render(msg)
	}
	right := base.Render(info + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
