package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage monthly budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgetList,
}

var budgetSetCmd = &cobra.Command{
	Use:     "set MONTH LIMIT",
	Short:   "Set the spending limit for a month (YYYY-MM)",
	Example: "  flowtrack budget set 2024-12 5000000",
	Args:    cobra.ExactArgs(2),
	RunE:    runBudgetSet,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show [MONTH]",
	Short: "Show one month's budget (default this month)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBudgetShow,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all budgets in month order",
	Args:  cobra.NoArgs,
	RunE:  runBudgetList,
}

var budgetRangeCmd = &cobra.Command{
	Use:   "range START END",
	Short: "List budgets between two months, inclusive",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetRange,
}

var budgetRemoveCmd = &cobra.Command{
	Use:   "remove MONTH",
	Short: "Remove a month's budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetRemove,
}

var budgetRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recalculate every budget's spend from recorded expenses",
	Args:  cobra.NoArgs,
	RunE:  runBudgetRecompute,
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd, budgetShowCmd, budgetListCmd, budgetRangeCmd, budgetRemoveCmd, budgetRecomputeCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	month, err := model.ParseMonth(args[0])
	if err != nil {
		return err
	}
	limit, err := pipeline.ParseAmount(args[1])
	if err != nil {
		return err
	}

	return withBook(func(b *pipeline.Book) (bool, error) {
		n := pipeline.SetBudget(b.Ledger, month, limit)
		fmt.Printf("  Budget for %s set to %s\n", n.Month, cli.FormatAmount(n.Limit, currency))
		printBudgetStatus(n)
		return true, nil
	})
}

func runBudgetShow(_ *cobra.Command, args []string) error {
	month := today().MonthKey()
	if len(args) == 1 {
		m, err := model.ParseMonth(args[0])
		if err != nil {
			return err
		}
		month = m
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	n, ok := b.Ledger.Budgets().Find(month)
	if !ok {
		fmt.Printf("\n  No budget for %s. Set one with `flowtrack budget set %s LIMIT`.\n\n", month, month)
		return nil
	}

	row := pipeline.BudgetReport([]*ledger.BudgetNode{n}, appCfg.Budget.NearLimitPercent)[0]
	fmt.Println()
	fmt.Println(cli.RenderTitle("Budget " + month))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Limit", cli.FormatAmount(row.Limit, currency)},
		{"Spent", cli.FormatAmount(row.Spent, currency)},
		{"Remaining", cli.FormatAmount(row.Remaining, currency)},
		{"Used", cli.RenderBudgetBar(row.Percent, appCfg.Budget.NearLimitPercent, 30)},
		{"Status", budgetStateLabel(row.State)},
	}))
	fmt.Println()
	return nil
}

func runBudgetList(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	printBudgetTable("Budgets", b.Ledger.Budgets().AllInOrder())
	return nil
}

func runBudgetRange(_ *cobra.Command, args []string) error {
	start, err := model.ParseMonth(args[0])
	if err != nil {
		return err
	}
	end, err := model.ParseMonth(args[1])
	if err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("range start %s is after end %s", start, end)
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	printBudgetTable(fmt.Sprintf("Budgets %s to %s", start, end), b.Ledger.Budgets().Range(start, end))
	return nil
}

func runBudgetRemove(_ *cobra.Command, args []string) error {
	month, err := model.ParseMonth(args[0])
	if err != nil {
		return err
	}
	return withBook(func(b *pipeline.Book) (bool, error) {
		if !b.Ledger.Budgets().Remove(month) {
			return false, fmt.Errorf("no budget for %s", month)
		}
		fmt.Printf("  Removed budget for %s\n", month)
		return true, nil
	})
}

func runBudgetRecompute(_ *cobra.Command, _ []string) error {
	return withBook(func(b *pipeline.Book) (bool, error) {
		pipeline.RecomputeSpent(b.Ledger)
		fmt.Printf("  Recomputed %d budgets\n", b.Ledger.Budgets().Len())
		return b.Ledger.Budgets().Len() > 0, nil
	})
}

func printBudgetTable(title string, nodes []*ledger.BudgetNode) {
	if len(nodes) == 0 {
		fmt.Println("\n  No budgets set. Add one with `flowtrack budget set YYYY-MM LIMIT`.")
		return
	}

	near := appCfg.Budget.NearLimitPercent
	rows := make([][]string, 0, len(nodes))
	for _, row := range pipeline.BudgetReport(nodes, near) {
		remaining := cli.FormatAmount(row.Remaining, currency)
		if row.Remaining.IsNegative() {
			remaining = cli.Expense(remaining)
		}
		rows = append(rows, []string{
			row.Month,
			cli.FormatAmount(row.Limit, currency),
			cli.FormatAmount(row.Spent, currency),
			remaining,
			cli.RenderBudgetBar(row.Percent, near, 20),
			budgetStateLabel(row.State),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Month", "Limit", "Spent", "Remaining", "Used", "Status"},
		Rows:    rows,
		Align:   []cli.Align{cli.AlignLeft, cli.AlignRight, cli.AlignRight, cli.AlignRight},
	}))
	fmt.Println()
}

// printBudgetStatus prints a one-line progress summary for a month.
func printBudgetStatus(n *ledger.BudgetNode) {
	near := appCfg.Budget.NearLimitPercent
	line := fmt.Sprintf("  Budget %s %s  %s left", n.Month,
		cli.RenderBudgetBar(n.Percentage(), near, 20),
		cli.FormatAmount(n.Remaining(), currency))
	switch {
	case n.IsOverBudget():
		line += "  " + cli.Expense("over budget")
	case n.IsNearLimit(near):
		line += "  " + cli.Warn("near limit")
	}
	fmt.Println(line)
}

func budgetStateLabel(s pipeline.BudgetState) string {
	switch s {
	case pipeline.BudgetOver:
		return cli.Expense("over")
	case pipeline.BudgetNear:
		return cli.Warn("near limit")
	default:
		return cli.Income("ok")
	}
}
