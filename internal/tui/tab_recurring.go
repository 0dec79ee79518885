package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/tui/components"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

// pendingEntries returns the scheduled occurrences whose record still
// exists, in queue order.
func (a App) pendingEntries() []ledger.Entry {
	entries := a.book.Ledger.Scheduler().Entries()
	live := entries[:0]
	for _, e := range entries {
		if e.Record.Live() {
			live = append(live, e)
		}
	}
	return live
}

func (a App) renderRecurringTab(cw int) string {
	t := theme.Active
	entries := a.pendingEntries()
	today := a.today()

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(entries) == 0 {
		return components.ContentCard("Recurring", muted.Render("No recurring transactions scheduled"), cw)
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dueStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Bold(true)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	inner := components.CardInnerWidth(cw)
	titleW := max(inner-10-8-16-14, 10)

	due := 0
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("  %-10s  %-*s %-8s %16s", "Due", titleW, "Title", "Every", "Amount")))
	for i, e := range entries {
		r := e.Record
		style := rowStyle
		cursor := "  "
		if i == a.pending.cursor {
			style = selStyle
			cursor = "▸ "
		}
		dueText := style
		if !e.Due.After(today) {
			dueText = dueStyle
			due++
		}
		b.WriteString("\n")
		b.WriteString(style.Render(cursor))
		b.WriteString(dueText.Render(fmt.Sprintf("%-10s", e.Due.String())))
		b.WriteString(style.Render(fmt.Sprintf("  %-*s %-8s %16s",
			titleW, cli.Truncate(r.Title, titleW),
			cli.FormatInterval(r.Recurring, r.Interval),
			cli.FormatSigned(r.Amount, r.Kind, a.currency))))
	}

	b.WriteString("\n\n")
	if due > 0 {
		b.WriteString(dueStyle.Render(fmt.Sprintf("%d due today or earlier. Press P to post.", due)))
	} else {
		b.WriteString(muted.Render("Nothing due yet."))
	}
	return components.ContentCard(fmt.Sprintf("Recurring (%d scheduled)", len(entries)), b.String(), cw)
}
