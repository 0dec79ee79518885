package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagListMonth    string
	flagListType     string
	flagListCategory string
	flagListSearch   string
	flagListLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions grouped by date, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().StringVarP(&flagListMonth, "month", "m", "", "Only this month (YYYY-MM)")
	listCmd.Flags().StringVarP(&flagListType, "type", "t", "", "Only income or expense")
	listCmd.Flags().StringVarP(&flagListCategory, "category", "c", "", "Only this category")
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "Title or category contains")
	listCmd.Flags().IntVarP(&flagListLimit, "limit", "n", 0, "Show at most n transactions")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

// listFilter returns the set of records that pass the list flags.
func listFilter(l *ledger.Ledger) (map[*ledger.Record]bool, error) {
	var kind model.Kind
	if flagListType != "" {
		k, err := model.ParseKind(flagListType)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	if flagListMonth != "" {
		if _, err := model.ParseMonth(flagListMonth); err != nil {
			return nil, err
		}
	}

	records := pipeline.Collect(l)
	records = pipeline.FilterByMonth(records, flagListMonth)
	records = pipeline.FilterByKind(records, kind)
	records = pipeline.FilterByCategory(records, flagListCategory)
	records = pipeline.Search(records, flagListSearch)

	keep := make(map[*ledger.Record]bool, len(records))
	for _, r := range records {
		keep[r] = true
	}
	return keep, nil
}

func runList(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if b.Ledger.Len() == 0 {
		fmt.Println("\n  No transactions yet. Add one with `flowtrack add`.")
		return nil
	}
	keep, err := listFilter(b.Ledger)
	if err != nil {
		return err
	}

	now := today()
	shown := 0
	full := func() bool { return flagListLimit > 0 && shown >= flagListLimit }

	fmt.Println()
	for _, g := range b.Ledger.GroupByDate() {
		if full() {
			break
		}
		var rows [][]string
		for _, r := range g.Records {
			if !keep[r] || full() {
				continue
			}
			shown++
			rows = append(rows, recordRow(r))
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   cli.FormatDateHeader(g.Date, now),
			Headers: []string{"ID", "Title", "Category", "Repeats", "Amount"},
			Rows:    rows,
			Align:   []cli.Align{cli.AlignRight, cli.AlignLeft, cli.AlignLeft, cli.AlignLeft, cli.AlignRight},
		}))
		fmt.Println()
	}

	if shown == 0 {
		fmt.Println("  No transactions match.")
	}
	return nil
}

func recordRow(r *ledger.Record) []string {
	amount := cli.FormatSigned(r.Amount, r.Kind, currency)
	if r.IsExpense() {
		amount = cli.Expense(amount)
	} else {
		amount = cli.Income(amount)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		cli.Truncate(r.Title, 32),
		cli.Muted(cli.Truncate(r.Category, 16)),
		cli.Muted(cli.FormatInterval(r.Recurring, r.Interval)),
		amount,
	}
}

func runShow(_ *cobra.Command, args []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	r, err := findRecord(b.Ledger, args[0])
	if err != nil {
		return err
	}

	next := "-"
	if due, ok := nextDue(b.Ledger, r); ok {
		next = due.String()
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"ID", strconv.FormatInt(r.ID, 10)},
		{"Date", r.Date.String() + " (" + cli.FormatDayOfWeek(int(r.Date.Weekday())) + ")"},
		{"Title", r.Title},
		{"Amount", cli.FormatAmount(r.Amount, currency)},
		{"Type", r.Kind.String()},
		{"Category", r.Category},
		{"Repeats", cli.FormatInterval(r.Recurring, r.Interval)},
		{"Next due", next},
	}))
	fmt.Println()
	return nil
}

// nextDue returns the earliest scheduled occurrence of r.
func nextDue(l *ledger.Ledger, r *ledger.Record) (model.Date, bool) {
	var due model.Date
	found := false
	for _, e := range l.Scheduler().Entries() {
		if e.Record == r && (!found || e.Due.Before(due)) {
			due, found = e.Due, true
		}
	}
	return due, found
}
