package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagAddDate     string
	flagAddType     string
	flagAddCategory string
	flagAddEvery    string
)

var addCmd = &cobra.Command{
	Use:   "add TITLE AMOUNT",
	Short: "Record an income or expense",
	Example: `  flowtrack add "Groceries" 150000 -c Food
  flowtrack add Salary 8000000 -t income -c Work --every monthly --date 2024-12-01`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddDate, "date", "d", "", "Transaction date, YYYY-MM-DD (default today)")
	addCmd.Flags().StringVarP(&flagAddType, "type", "t", "expense", "income or expense")
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", "General", "Category")
	addCmd.Flags().StringVar(&flagAddEvery, "every", "", "Repeat weekly or monthly")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	nr, err := pipeline.RecordInput{
		Date:     flagAddDate,
		Title:    args[0],
		Amount:   args[1],
		Kind:     flagAddType,
		Category: flagAddCategory,
		Interval: flagAddEvery,
	}.Parse(today())
	if err != nil {
		return err
	}

	return withBook(func(b *pipeline.Book) (bool, error) {
		r := b.Ledger.Insert(nr)
		pipeline.TrackExpense(b.Ledger.Budgets(), r)

		fmt.Printf("  Added #%d %s  %s  %s\n", r.ID, r.Date, r.Title, cli.FormatSigned(r.Amount, r.Kind, currency))
		if due, ok := nextDue(b.Ledger, r); ok {
			fmt.Printf("  Repeats %s, next on %s\n", r.Interval, due)
		}
		if n, ok := b.Ledger.Budgets().Find(r.Date.MonthKey()); ok && r.IsExpense() {
			printBudgetStatus(n)
		}
		return true, nil
	})
}
