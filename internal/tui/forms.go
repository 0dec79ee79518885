package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
	"github.com/theirongolddev/flowtrack/internal/tui/theme"
)

// txFormValues backs the add-transaction form.
type txFormValues struct {
	pipeline.RecordInput
}

// budgetFormValues backs the budget form.
type budgetFormValues struct {
	Month string
	Limit string
}

// setupValues backs the first-run form.
type setupValues struct {
	Currency string
	Backend  string
	Theme    string
}

func kindOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("Expense", "expense"),
		huh.NewOption("Income", "income"),
	}
}

func intervalOptions() []huh.Option[string] {
	return []huh.Option[string]{
		huh.NewOption("One-off", "none"),
		huh.NewOption("Weekly", "weekly"),
		huh.NewOption("Monthly", "monthly"),
	}
}

func newTransactionForm(v *txFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&v.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return pipeline.ErrEmptyTitle
					}
					return nil
				}),
			huh.NewInput().
				Title("Amount").
				Placeholder("50000").
				Value(&v.Amount).
				Validate(func(s string) error {
					_, err := pipeline.ParseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(kindOptions()...).
				Value(&v.Kind),
			huh.NewInput().
				Title("Category").
				Placeholder("General").
				Value(&v.Category),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD").
				Value(&v.Date).
				Validate(func(s string) error {
					_, err := model.ParseDate(strings.TrimSpace(s))
					return err
				}),
			huh.NewSelect[string]().
				Title("Repeats").
				Options(intervalOptions()...).
				Value(&v.Interval),
		).Title("Add transaction"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func newBudgetForm(v *budgetFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Month").
				Description("YYYY-MM").
				Value(&v.Month).
				Validate(func(s string) error {
					_, err := model.ParseMonth(strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Limit").
				Value(&v.Limit).
				Validate(func(s string) error {
					_, err := pipeline.ParseAmount(s)
					return err
				}),
		).Title("Set budget"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func newSetupForm(cfg config.Config, v *setupValues) *huh.Form {
	v.Currency = cfg.ResolveCurrency().Code
	v.Backend = cfg.Storage.Backend
	v.Theme = theme.ByName(cfg.Appearance.Theme).Name

	currencies := make([]huh.Option[string], 0, len(config.DefaultCurrencies))
	for _, code := range config.CurrencyCodes() {
		c := config.DefaultCurrencies[code]
		currencies = append(currencies, huh.NewOption(fmt.Sprintf("%s (%s)", code, c.Prefix), code))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to flowtrack").
				Description("A few settings before the dashboard opens.\nRun `flowtrack setup` anytime to change them."),
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencies...).
				Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Storage").
				Options(
					huh.NewOption("JSON file", config.BackendJSON),
					huh.NewOption("SQLite database", config.BackendSQLite),
				).
				Value(&v.Backend),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

// RunSetup runs the setup form on its own, outside the dashboard, and
// copies the answers into cfg. It returns false if the user aborted.
func RunSetup(cfg *config.Config) (bool, error) {
	v := &setupValues{}
	err := newSetupForm(*cfg, v).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	applySetupValues(cfg, *v)
	return true, nil
}

// applySetupValues copies the form answers into cfg.
func applySetupValues(cfg *config.Config, v setupValues) {
	cfg.General.Currency = v.Currency
	cfg.Storage.Backend = v.Backend
	cfg.Appearance.Theme = v.Theme
}

func (a App) openTransactionForm() (tea.Model, tea.Cmd) {
	v := &txFormValues{}
	v.Kind = "expense"
	v.Interval = "none"
	v.Date = a.today().String()

	a.txVals = v
	a.form = newTransactionForm(v).WithWidth(formWidth(a.contentWidth()))
	a.onForm = func(a *App) error { return a.addTransaction(a.txVals.RecordInput) }
	return a, a.form.Init()
}

func (a App) openBudgetForm() (tea.Model, tea.Cmd) {
	v := &budgetFormValues{Month: a.today().MonthKey()}
	if n, ok := a.book.Ledger.Budgets().Find(v.Month); ok {
		v.Limit = n.Limit.String()
	}

	a.budVals = v
	a.form = newBudgetForm(v).WithWidth(formWidth(a.contentWidth()))
	a.onForm = func(a *App) error { return a.setBudget(*a.budVals) }
	return a, a.form.Init()
}

func (a *App) addTransaction(in pipeline.RecordInput) error {
	nr, err := in.Parse(a.today())
	if err != nil {
		return err
	}
	r := a.book.Ledger.Insert(nr)
	pipeline.TrackExpense(a.book.Ledger.Budgets(), r)
	a.activeTab = tabTransactions
	a.tx.query = ""
	a.tx.cursor = 0
	a.persist(fmt.Sprintf("added #%d %s", r.ID, r.Title))
	return nil
}

func (a *App) setBudget(v budgetFormValues) error {
	month, err := model.ParseMonth(strings.TrimSpace(v.Month))
	if err != nil {
		return err
	}
	limit, err := pipeline.ParseAmount(v.Limit)
	if err != nil {
		return err
	}
	pipeline.SetBudget(a.book.Ledger, month, limit)
	a.persist("budget set for " + month)
	return nil
}

func (a *App) applySetup() {
	applySetupValues(&a.cfg, *a.setupVals)
	theme.SetActive(a.cfg.Appearance.Theme)
	a.currency = a.cfg.ResolveCurrency()

	if err := config.Save(a.cfg); err != nil {
		a.logger.Error("saving config failed", log.FieldPath, config.ConfigPath(), log.FieldError, err)
		a.setStatus("could not save config: "+err.Error(), true)
		return
	}
	msg := "settings saved to " + config.ConfigPath()
	if a.cfg.Storage.Backend != a.book.Backend {
		msg += "; storage change applies on next start"
	}
	a.setStatus(msg, false)
}
