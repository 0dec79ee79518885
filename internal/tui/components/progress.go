package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

// BudgetBar renders a spent-vs-limit bar followed by the percentage. pct
// is 0-100 and may exceed 100; the bar itself caps at full.
func BudgetBar(pct, nearLimit float64, width int) string {
	t := theme.Active
	color := t.BudgetColor(pct, nearLimit)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return bar.ViewAs(min(max(pct/100, 0), 1)) + space + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}
