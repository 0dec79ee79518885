package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Balance, totals and this month's budget",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var highestCmd = &cobra.Command{
	Use:   "highest",
	Short: "Show the largest expense",
	Args:  cobra.NoArgs,
	RunE:  runHighest,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(highestCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	l := b.Ledger
	if l.Len() == 0 {
		fmt.Println("\n  No transactions yet.")
		fmt.Println("  Record one with `flowtrack add TITLE AMOUNT`, or run `flowtrack tui`.")
		return nil
	}

	stats := l.Stats()
	now := today()

	balance := cli.FormatAmount(stats.Balance, currency)
	if stats.Balance.IsNegative() {
		balance = cli.Expense(balance)
	} else {
		balance = cli.Income(balance)
	}

	highest := "-"
	if r, ok := l.HighestExpense(); ok {
		highest = fmt.Sprintf("%s  (%s, %s)", cli.FormatAmount(r.Amount, currency), cli.Truncate(r.Title, 24), r.Date)
	}

	thisMonth := "-"
	months := pipeline.AggregateMonths(pipeline.FilterByMonth(pipeline.Collect(l), now.MonthKey()))
	if len(months) == 1 {
		ms := months[0]
		thisMonth = fmt.Sprintf("%s in, %s out", cli.FormatAmount(ms.Income, currency), cli.FormatAmount(ms.Expense, currency))
	}

	rows := [][]string{
		{"Transactions", cli.FormatNumber(int64(l.Len()))},
		{"Recurring pending", strconv.Itoa(l.Scheduler().Len())},
		{"---"},
		{"Total income", cli.FormatAmount(stats.TotalIncome, currency)},
		{"Total expense", cli.FormatAmount(stats.TotalExpense, currency)},
		{"Balance", balance},
		{"---"},
		{"Highest expense", highest},
		{"This month", thisMonth},
	}

	if n, ok := l.Budgets().Find(now.MonthKey()); ok {
		rows = append(rows, []string{"Budget", cli.RenderBudgetBar(n.Percentage(), appCfg.Budget.NearLimitPercent, 20)})
		rows = append(rows, []string{"Budget left", cli.FormatAmount(n.Remaining(), currency)})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("FLOWTRACK  " + now.Time().Format("January 2006")))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if due := countDue(l, now); due > 0 {
		fmt.Printf("\n  %s recurring transactions are due. Run `flowtrack recurring post`.\n",
			cli.Warn(strconv.Itoa(due)))
	}
	return nil
}

func runHighest(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	r, ok := b.Ledger.HighestExpense()
	if !ok {
		fmt.Println("\n  No expenses recorded.")
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Highest expense", cli.Expense(cli.FormatAmount(r.Amount, currency))},
		{"Title", r.Title},
		{"Date", r.Date.String()},
		{"Category", r.Category},
		{"ID", strconv.FormatInt(r.ID, 10)},
	}))
	fmt.Println()
	return nil
}
