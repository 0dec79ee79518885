package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagDays        int
	flagWeekdayDays int
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily income and expense table",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

var weekdaysCmd = &cobra.Command{
	Use:   "weekdays",
	Short: "Spending by day of week",
	Args:  cobra.NoArgs,
	RunE:  runWeekdays,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDays, "days", "n", 14, "Number of days to show")
	weekdaysCmd.Flags().IntVarP(&flagWeekdayDays, "days", "n", 0, "Only the last n days (0 for all)")
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(weekdaysCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	if flagDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", flagDays)
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	until := today()
	since := until.AddDays(-(flagDays - 1))
	days := pipeline.AggregateDays(pipeline.Collect(b.Ledger), since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	spend := make([]float64, 0, len(days))
	for _, d := range days {
		net := d.Income.Sub(d.Expense)
		netStr := cli.FormatAmount(net, currency)
		if net.IsNegative() {
			netStr = cli.Expense(netStr)
		}
		rows = append(rows, []string{
			d.Date.String(),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Count)),
			cli.FormatAmount(d.Income, currency),
			cli.FormatAmount(d.Expense, currency),
			netStr,
		})
		spend = append(spend, d.Expense.InexactFloat64())
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Count", "Income", "Expense", "Net"},
		Rows:    rows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignLeft, cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignRight},
	}))

	// Days come newest first; the sparkline reads left to right.
	slices.Reverse(spend)
	fmt.Printf("\n  Spend  %s\n\n", cli.RenderSparkline(spend))
	return nil
}

func runWeekdays(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	records := pipeline.Collect(b.Ledger)
	title := "SPENDING BY WEEKDAY"
	if flagWeekdayDays > 0 {
		until := today()
		records = pipeline.FilterByRange(records, until.AddDays(-(flagWeekdayDays - 1)), until)
		title += fmt.Sprintf("  Last %dd", flagWeekdayDays)
	}
	days := pipeline.AggregateWeekdays(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	peak := days[0]
	for _, d := range days[1:] {
		if d.Expense.GreaterThan(peak.Expense) {
			peak = d
		}
	}
	if peak.Expense.IsZero() {
		fmt.Println("  No expenses in range.")
		return nil
	}

	maxValue := peak.Expense.InexactFloat64()
	for _, d := range days {
		label := fmt.Sprintf("%s │ %14s │", cli.FormatDayOfWeek(int(d.Weekday)), cli.FormatAmount(d.Expense, currency))
		fmt.Println(cli.RenderHorizontalBar(label, d.Expense.InexactFloat64(), maxValue, 40))
	}

	fmt.Printf("\n  Peak: %s (%s over %d expenses)\n\n",
		peak.Weekday, cli.FormatAmount(peak.Expense, currency), peak.Count)
	return nil
}
