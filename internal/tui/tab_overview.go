package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui/components"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

const (
	overviewDays       = 30
	overviewCategories = 6
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	l := a.book.Ledger
	st := l.Stats()
	today := a.today()

	balanceColor := t.Income
	if st.Balance.IsNegative() {
		balanceColor = t.Expense
	}
	highest := components.Metric{Label: "Highest expense", Value: "-"}
	if r, ok := l.HighestExpense(); ok {
		highest.Value = cli.FormatAmount(r.Amount, a.currency)
		highest.Detail = cli.Truncate(r.Title, 24) + " · " + r.Date.String()
		highest.Color = t.Expense
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatAmount(st.Balance, a.currency), Color: balanceColor,
			Detail: fmt.Sprintf("%d transactions", l.Len())},
		{Label: "Income", Value: cli.FormatAmount(st.TotalIncome, a.currency), Color: t.Income},
		{Label: "Expenses", Value: cli.FormatAmount(st.TotalExpense, a.currency), Color: t.Expense},
		highest,
	}, cw))
	b.WriteString("\n")

	records := pipeline.Collect(l)
	halves := components.LayoutRow(cw, 2)

	// Left: daily expense sparkline and this month's budget.
	days := pipeline.AggregateDays(records, today.AddDays(-(overviewDays - 1)), today)
	values := make([]float64, len(days))
	for i, d := range days {
		values[len(days)-1-i] = d.Expense.InexactFloat64()
	}
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var left strings.Builder
	left.WriteString(components.Sparkline(values, t.Info))
	left.WriteString("\n")
	left.WriteString(muted.Render(fmt.Sprintf("%-*s%s",
		max(len(values)-5, 0), today.AddDays(-(overviewDays-1)).Time().Format("Jan 2"), "today")))

	month := today.MonthKey()
	left.WriteString("\n\n")
	if n, ok := l.Budgets().Find(month); ok {
		left.WriteString(muted.Render("Budget " + month + "  "))
		left.WriteString(components.BudgetBar(n.Percentage(), a.cfg.Budget.NearLimitPercent, 20))
		left.WriteString("\n")
		left.WriteString(muted.Render(fmt.Sprintf("%s of %s",
			cli.FormatAmount(n.Spent, a.currency), cli.FormatAmount(n.Limit, a.currency))))
	} else {
		left.WriteString(muted.Render("No budget for " + month + " (press b, then n)"))
	}
	leftCard := components.ContentCard(fmt.Sprintf("Daily expenses (%dd)", overviewDays), left.String(), halves[0])

	// Right: expense by category.
	cats := pipeline.AggregateCategories(pipeline.FilterByKind(records, model.Expense))
	bars := make([]components.Bar, 0, overviewCategories)
	for _, c := range cats {
		if len(bars) == overviewCategories {
			break
		}
		bars = append(bars, components.Bar{
			Label: cli.Truncate(c.Category, 14),
			Value: c.Expense.InexactFloat64(),
			Text:  cli.FormatPercent(c.SharePercent),
		})
	}
	body := components.HorizontalBars(bars, t.Expense, components.CardInnerWidth(halves[1]))
	if body == "" {
		body = muted.Render("No expenses yet")
	}
	rightCard := components.ContentCard("Expenses by category", body, halves[1])

	b.WriteString(components.CardRow([]string{leftCard, rightCard}))
	return b.String()
}
