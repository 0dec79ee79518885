package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui/components"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

func (a App) renderBudgetsTab(cw int) string {
	t := theme.Active
	rows := pipeline.BudgetReport(a.book.Ledger.Budgets().AllInOrder(), a.cfg.Budget.NearLimitPercent)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(rows) == 0 {
		return components.ContentCard("Budgets", muted.Render("No budgets. Press n to set one."), cw)
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	inner := components.CardInnerWidth(cw)
	amountW := 16
	barW := max(inner-9-3*amountW-12, 10)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("  %-7s %*s %*s %*s  %s",
		"Month", amountW, "Limit", amountW, "Spent", amountW, "Remaining", "Used")))
	for i, row := range rows {
		style := rowStyle
		cursor := "  "
		if i == a.budgets.cursor {
			style = selStyle
			cursor = "▸ "
		}
		remaining := cli.FormatAmount(row.Remaining, a.currency)
		remStyle := style
		if row.State == pipeline.BudgetOver {
			remStyle = style.Foreground(t.Expense)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%s%-7s %*s %*s ",
			cursor, row.Month,
			amountW, cli.FormatAmount(row.Limit, a.currency),
			amountW, cli.FormatAmount(row.Spent, a.currency))))
		b.WriteString(remStyle.Render(fmt.Sprintf("%*s", amountW, remaining)))
		b.WriteString(style.Render("  "))
		b.WriteString(components.BudgetBar(row.Percent, a.cfg.Budget.NearLimitPercent, barW))
	}
	b.WriteString("\n\n")
	b.WriteString(muted.Render("[n] new or change budget   [x] remove selected"))

	return components.ContentCard(fmt.Sprintf("Budgets (%d)", len(rows)), b.String(), cw)
}
