package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var flagCatMonth string

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "Totals per category",
	Args:    cobra.NoArgs,
	RunE:    runCategories,
}

var monthsCmd = &cobra.Command{
	Use:   "months",
	Short: "Income, expense and net per month",
	Args:  cobra.NoArgs,
	RunE:  runMonths,
}

func init() {
	categoriesCmd.Flags().StringVarP(&flagCatMonth, "month", "m", "", "Only this month (YYYY-MM)")
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(monthsCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	if flagCatMonth != "" {
		if _, err := model.ParseMonth(flagCatMonth); err != nil {
			return err
		}
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	cats := pipeline.AggregateCategories(pipeline.FilterByMonth(pipeline.Collect(b.Ledger), flagCatMonth))
	if len(cats) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	title := "CATEGORIES"
	if flagCatMonth != "" {
		title += "  " + flagCatMonth
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			cli.Truncate(c.Category, 24),
			cli.FormatNumber(int64(c.Count)),
			cli.FormatAmount(c.Income, currency),
			cli.FormatAmount(c.Expense, currency),
			cli.FormatPercent(c.SharePercent),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Count", "Income", "Expense", "Share"},
		Rows:    rows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignRight},
	}))
	return nil
}

func runMonths(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	months := pipeline.AggregateMonths(pipeline.Collect(b.Ledger))
	if len(months) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		net := cli.FormatAmount(m.Net, currency)
		if m.Net.IsNegative() {
			net = cli.Expense(net)
		} else {
			net = cli.Income(net)
		}
		budget := "-"
		if n, ok := b.Ledger.Budgets().Find(m.Month); ok {
			budget = cli.FormatPercent(n.Percentage())
		}
		rows = append(rows, []string{
			m.Month,
			cli.FormatNumber(int64(m.Count)),
			cli.FormatAmount(m.Income, currency),
			cli.FormatAmount(m.Expense, currency),
			net,
			budget,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Months",
		Headers: []string{"Month", "Count", "Income", "Expense", "Net", "Budget"},
		Rows:    rows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignRight, cli.AlignRight},
	}))
	return nil
}
