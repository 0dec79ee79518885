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

var flagRecurringDate string

var recurringCmd = &cobra.Command{
	Use:     "recurring",
	Aliases: []string{"rec"},
	Short:   "Pending recurring transactions",
	Args:    cobra.NoArgs,
	RunE:    runRecurringList,
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every pending occurrence in queue order",
	Args:  cobra.NoArgs,
	RunE:  runRecurringList,
}

var recurringDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List occurrences due on or before today",
	Args:  cobra.NoArgs,
	RunE:  runRecurringDue,
}

var recurringPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Record every occurrence that is due",
	Args:  cobra.NoArgs,
	RunE:  runRecurringPost,
}

func init() {
	for _, c := range []*cobra.Command{recurringDueCmd, recurringPostCmd} {
		c.Flags().StringVarP(&flagRecurringDate, "date", "d", "", "Treat this date as today (YYYY-MM-DD)")
	}
	recurringCmd.AddCommand(recurringListCmd, recurringDueCmd, recurringPostCmd)
	rootCmd.AddCommand(recurringCmd)
}

// postingDate resolves --date, falling back to today.
func postingDate() (model.Date, error) {
	if flagRecurringDate == "" {
		return today(), nil
	}
	return model.ParseDate(flagRecurringDate)
}

// countDue counts live pending occurrences due on or before day.
func countDue(l *ledger.Ledger, day model.Date) int {
	n := 0
	for _, e := range l.Scheduler().Entries() {
		if e.Record.Live() && !e.Due.After(day) {
			n++
		}
	}
	return n
}

func runRecurringList(_ *cobra.Command, _ []string) error {
	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	printPending("Pending recurring", b.Ledger.Scheduler().Entries(), today())
	return nil
}

func runRecurringDue(_ *cobra.Command, _ []string) error {
	day, err := postingDate()
	if err != nil {
		return err
	}

	b, err := openBook()
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	var due []ledger.Entry
	for _, e := range b.Ledger.Scheduler().Entries() {
		if !e.Due.After(day) {
			due = append(due, e)
		}
	}
	printPending("Due by "+day.String(), due, day)
	return nil
}

func runRecurringPost(_ *cobra.Command, _ []string) error {
	day, err := postingDate()
	if err != nil {
		return err
	}

	return withBook(func(b *pipeline.Book) (bool, error) {
		posted := b.Ledger.PostDue(day)
		if len(posted) == 0 {
			fmt.Printf("  Nothing due by %s\n", day)
			return false, nil
		}

		for _, r := range posted {
			pipeline.TrackExpense(b.Ledger.Budgets(), r)
			fmt.Printf("  Posted #%d %s  %s  %s\n", r.ID, r.Date, r.Title, cli.FormatSigned(r.Amount, r.Kind, currency))
		}
		fmt.Printf("  %d transactions recorded\n", len(posted))
		return true, nil
	})
}

func printPending(title string, entries []ledger.Entry, day model.Date) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		r := e.Record
		if !r.Live() {
			continue
		}
		due := e.Due.String()
		if !e.Due.After(day) {
			due = cli.Warn(due + " due")
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			due,
			cli.Truncate(r.Title, 28),
			r.Interval.String(),
			cli.FormatSigned(r.Amount, r.Kind, currency),
		})
	}
	if len(rows) == 0 {
		fmt.Println("\n  Nothing pending.")
		return
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Source", "Due", "Title", "Every", "Amount"},
		Rows:    rows,
		Align:   []cli.Align{cli.AlignRight, cli.AlignLeft, cli.AlignLeft, cli.AlignLeft, cli.AlignRight},
	}))
	fmt.Println()
}
