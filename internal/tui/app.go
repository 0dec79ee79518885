// Package tui provides the interactive Bubble Tea dashboard for flowtrack.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui/components"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

// BookLoadedMsg is sent when the ledger finishes loading.
type BookLoadedMsg struct {
	Book     *pipeline.Book
	Err      error
	LoadTime time.Duration
}

// Options configures NewApp.
type Options struct {
	Config    config.Config
	Open      func() (*pipeline.Book, error)
	Today     func() model.Date // defaults to model.Today
	Logger    *log.Logger
	NeedSetup bool // run the first-run form once the ledger is loaded
}

// App is the root Bubble Tea model.
type App struct {
	cfg      config.Config
	currency config.Currency
	open     func() (*pipeline.Book, error)
	today    func() model.Date
	logger   *log.Logger

	// Data
	book        *pipeline.Book
	loaded      bool
	loadErr     error
	loadTime    time.Duration
	backupShown bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	tx      txState
	budgets listState
	pending listState

	// Add-transaction and budget forms (huh)
	form    *huh.Form
	onForm  func(a *App) error
	txVals  *txFormValues
	budVals *budgetFormValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	status    string
	statusErr bool

	spinner spinner.Model
}

const (
	tabOverview = iota
	tabTransactions
	tabBudgets
	tabRecurring
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Today == nil {
		opts.Today = model.Today
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:       opts.Config,
		currency:  opts.Config.ResolveCurrency(),
		open:      opts.Open,
		today:     opts.Today,
		logger:    opts.Logger.WithComponent(log.ComponentTUI),
		needSetup: opts.NeedSetup,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadBookCmd(a.open),
		a.spinner.Tick,
	)
}

func loadBookCmd(open func() (*pipeline.Book, error)) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		b, err := open()
		return BookLoadedMsg{Book: b, Err: err, LoadTime: time.Since(start)}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.form != nil {
			a.form = a.form.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.ready() || a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case BookLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.book = msg.Book
		switch a.book.Load.Status {
		case ledger.LoadCorrupt:
			a.setStatus("saved ledger could not be read; starting empty, it will be kept on the next save", true)
		case ledger.LoadMissing:
			a.setStatus("new ledger at "+a.book.Where, false)
		}

		if a.needSetup {
			a.setupVals = &setupValues{}
			a.setupForm = newSetupForm(a.cfg, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.) to active forms.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.tx.searching {
		var cmd tea.Cmd
		a.tx.search, cmd = a.tx.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.ready() {
		if key == "q" || key == "esc" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.activeTab == tabTransactions && a.tx.searching {
		return a.updateSearch(msg)
	}
	if a.activeTab == tabTransactions && a.tx.confirmDelete {
		if key == "y" || key == "Y" {
			a.deleteSelected()
		} else {
			a.setStatus("delete cancelled", false)
		}
		a.tx.confirmDelete = false
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabTransactions:
		switch key {
		case "/":
			a.tx.searching = true
			a.tx.search = newSearchInput(a.tx.query)
			cmd := a.tx.search.Focus()
			return a, cmd
		case "esc":
			a.tx.query = ""
			a.tx.cursor = 0
			return a, nil
		case "d", "delete":
			if _, ok := a.selectedRecord(); ok {
				a.tx.confirmDelete = true
			}
			return a, nil
		case "g":
			a.tx.cursor = 0
			return a, nil
		case "G":
			a.tx.cursor = max(len(a.visibleRecords())-1, 0)
			return a, nil
		}
	case tabBudgets:
		switch key {
		case "n":
			return a.openBudgetForm()
		case "x", "delete":
			a.removeSelectedBudget()
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "a":
		return a.openTransactionForm()
	case "P":
		a.postDue()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.applySetup()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		if err := a.onForm(&a); err != nil {
			a.setStatus(err.Error(), true)
		}
		a.closeForm()
		return a, nil
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) closeForm() {
	a.form = nil
	a.onForm = nil
	a.txVals = nil
	a.budVals = nil
}

func (a App) ready() bool {
	return a.loaded && a.book != nil
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

func (a *App) moveCursor(delta int) {
	var ls *listState
	n := 0
	switch a.activeTab {
	case tabTransactions:
		ls, n = &a.tx.listState, len(a.visibleRecords())
	case tabBudgets:
		ls, n = &a.budgets, a.book.Ledger.Budgets().Len()
	case tabRecurring:
		ls, n = &a.pending, len(a.pendingEntries())
	default:
		return
	}
	ls.cursor = max(0, min(ls.cursor+delta, n-1))
}

// persist saves the ledger and reports msg, or the save error, in the
// status bar.
func (a *App) persist(msg string) {
	if err := a.book.Save(); err != nil {
		a.logger.Error("save failed", log.FieldOperation, log.OpSave, log.FieldPath, a.book.Where, log.FieldError, err)
		a.setStatus("save failed: "+err.Error(), true)
		return
	}
	if a.book.Backup != "" && !a.backupShown {
		a.backupShown = true
		msg += "; unreadable data kept at " + a.book.Backup
	}
	a.setStatus(msg, false)
}

func (a *App) postDue() {
	posted := a.book.Ledger.PostDue(a.today())
	if len(posted) == 0 {
		a.setStatus("nothing due", false)
		return
	}
	for _, r := range posted {
		pipeline.TrackExpense(a.book.Ledger.Budgets(), r)
	}
	a.persist(fmt.Sprintf("posted %d recurring transaction(s)", len(posted)))
}

func (a *App) deleteSelected() {
	r, ok := a.selectedRecord()
	if !ok {
		return
	}
	pipeline.UntrackExpense(a.book.Ledger.Budgets(), r)
	a.book.Ledger.Delete(r)
	a.tx.cursor = max(0, min(a.tx.cursor, len(a.visibleRecords())-1))
	a.persist(fmt.Sprintf("deleted #%d %s", r.ID, r.Title))
}

func (a *App) removeSelectedBudget() {
	nodes := a.book.Ledger.Budgets().AllInOrder()
	if len(nodes) == 0 {
		return
	}
	month := nodes[min(a.budgets.cursor, len(nodes)-1)].Month
	a.book.Ledger.Budgets().Remove(month)
	a.budgets.cursor = max(0, min(a.budgets.cursor, len(nodes)-2))
	a.persist("removed budget " + month)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  flowtrack needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) overlay(body string) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	return a.overlay(logo.Render("◈ flowtrack") + muted.Render(" · personal ledger") + "\n\n" +
		a.spinner.View() + muted.Render(" Loading ledger..."))
}

func (a App) viewLoadError() string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	return a.overlay(errStyle.Render("Could not open the ledger") + "\n\n" +
		muted.Render(a.loadErr.Error()) + "\n\n" +
		muted.Render("Press q to quit"))
}

func (a App) viewHelp() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o t b r", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"g G", "First / Last transaction"},
		}},
		{"Actions", [][2]string{
			{"a", "Add transaction"},
			{"P", "Post due recurring transactions"},
			{"/", "Search transactions"},
			{"d", "Delete selected transaction"},
			{"n x", "New / Remove budget (Budgets tab)"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	for _, s := range sections {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(s.title))
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "\n  %s  %s", keyStyle.Render(fmt.Sprintf("%-8s", bind[0])), descStyle.Render(bind[1]))
		}
	}
	return a.overlay(b.String())
}

func (a App) viewMain() string {
	t := theme.Active
	w, h := a.width, a.height
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	info := fmt.Sprintf("%s · %d txns", a.book.Backend, a.book.Ledger.Len())
	statusBar := components.RenderStatusBar(w, a.status, a.statusErr, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	if a.form != nil {
		content = lipgloss.Place(cw, contentH, lipgloss.Center, lipgloss.Center,
			components.FocusedCard("", a.form.View(), formWidth(cw)),
			lipgloss.WithWhitespaceBackground(t.Background))
	} else {
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabTransactions:
			content = a.renderTransactionsTab(cw, contentH)
		case tabBudgets:
			content = a.renderBudgetsTab(cw)
		case tabRecurring:
			content = a.renderRecurringTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func formWidth(w int) int {
	return max(min(w-10, 70), 40)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
