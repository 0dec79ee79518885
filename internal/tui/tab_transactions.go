package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui/components"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

type listState struct {
	cursor int
}

// txState holds the transactions tab state.
type txState struct {
	listState
	searching     bool
	search        textinput.Model
	query         string
	confirmDelete bool
}

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "title or category"
	ti.CharLimit = 64
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// updateSearch handles key events while the search input is focused.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.tx.query = strings.TrimSpace(a.tx.search.Value())
		a.tx.searching = false
		a.tx.cursor = 0
		return a, nil
	case "esc":
		a.tx.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.tx.search, cmd = a.tx.search.Update(msg)
	return a, cmd
}

// visibleRecords returns the records matching the current search, newest
// first.
func (a App) visibleRecords() []*ledger.Record {
	return pipeline.Search(pipeline.Collect(a.book.Ledger), a.tx.query)
}

func (a App) selectedRecord() (*ledger.Record, bool) {
	recs := a.visibleRecords()
	if a.tx.cursor < 0 || a.tx.cursor >= len(recs) {
		return nil, false
	}
	return recs[a.tx.cursor], true
}

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	recs := a.visibleRecords()

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).Bold(true)

	title := fmt.Sprintf("Transactions (%d)", len(recs))
	if a.tx.query != "" {
		title += fmt.Sprintf(" matching %q", a.tx.query)
	}

	var top string
	switch {
	case a.tx.searching:
		top = a.tx.search.View() + "\n"
	case a.tx.confirmDelete:
		if r, ok := a.selectedRecord(); ok {
			top = warnStyle.Render(fmt.Sprintf("Delete #%d %q? [y/N]", r.ID, r.Title)) + "\n"
		}
	}

	if len(recs) == 0 {
		return components.ContentCard(title, top+mutedStyle.Render("No transactions"), cw)
	}

	inner := components.CardInnerWidth(cw)
	amountW := 16
	catW := 14
	titleW := max(inner-amountW-catW-12, 10)

	// Lines are built per date group so the cursor can be kept on screen.
	type line struct {
		text   string
		amount string
		record int // index into recs, or -1 for headers
	}
	var lines []line
	today := a.today()
	var lastDate model.Date
	for i, r := range recs {
		if i == 0 || !r.Date.Equal(lastDate) {
			if i > 0 {
				lines = append(lines, line{record: -1})
			}
			lines = append(lines, line{text: headerStyle.Render(cli.FormatDateHeader(r.Date, today)), record: -1})
			lastDate = r.Date
		}

		marker := " "
		if r.Schedulable() {
			marker = "↻"
		}
		lines = append(lines, line{
			text: fmt.Sprintf("%s %-*s  %-*s ",
				marker,
				titleW, cli.Truncate(r.Title, titleW),
				catW, cli.Truncate(r.Category, catW)),
			amount: fmt.Sprintf("%*s", amountW, cli.FormatSigned(r.Amount, r.Kind, a.currency)),
			record: i,
		})
	}

	visible := max(h-4-lipgloss.Height(top), 3)
	selLine := 0
	for i, ln := range lines {
		if ln.record == a.tx.cursor {
			selLine = i
			break
		}
	}
	offset := max(0, selLine-visible+1)
	end := min(offset+visible, len(lines))

	amountStyle := func(r *ledger.Record, base lipgloss.Style) lipgloss.Style {
		if r.IsExpense() {
			return base.Foreground(t.Expense)
		}
		return base.Foreground(t.Income)
	}

	var body strings.Builder
	body.WriteString(top)
	for i := offset; i < end; i++ {
		ln := lines[i]
		if ln.record < 0 {
			body.WriteString(ln.text)
		} else {
			style := rowStyle
			if ln.record == a.tx.cursor {
				style = selStyle
			}
			body.WriteString(style.Render(ln.text))
			body.WriteString(amountStyle(recs[ln.record], style).Render(ln.amount))
		}
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	return components.ContentCard(title, body.String(), cw)
}
