package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/flowtrack/internal/cli"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

var (
	flagUpdDate     string
	flagUpdTitle    string
	flagUpdAmount   string
	flagUpdType     string
	flagUpdCategory string
	flagUpdEvery    string
)

var updateCmd = &cobra.Command{
	Use:     "update ID",
	Aliases: []string{"edit"},
	Short:   "Change fields of a transaction",
	Example: `  flowtrack update 12 --amount 175000
  flowtrack update 3 --every none`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:     "delete ID...",
	Aliases: []string{"rm"},
	Short:   "Delete transactions",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

func init() {
	updateCmd.Flags().StringVarP(&flagUpdDate, "date", "d", "", "New date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&flagUpdTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&flagUpdAmount, "amount", "a", "", "New amount")
	updateCmd.Flags().StringVarP(&flagUpdType, "type", "t", "", "income or expense")
	updateCmd.Flags().StringVarP(&flagUpdCategory, "category", "c", "", "New category")
	updateCmd.Flags().StringVar(&flagUpdEvery, "every", "", "weekly, monthly or none")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

// buildPatch turns the flags that were set into a ledger patch.
func buildPatch(cmd *cobra.Command) (ledger.Patch, error) {
	var p ledger.Patch
	flags := cmd.Flags()

	if flags.Changed("date") {
		d, err := model.ParseDate(flagUpdDate)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if flags.Changed("title") {
		title := strings.TrimSpace(flagUpdTitle)
		if title == "" {
			return p, pipeline.ErrEmptyTitle
		}
		p.Title = &title
	}
	if flags.Changed("amount") {
		amt, err := pipeline.ParseAmount(flagUpdAmount)
		if err != nil {
			return p, err
		}
		p.Amount = &amt
	}
	if flags.Changed("type") {
		k, err := model.ParseKind(flagUpdType)
		if err != nil {
			return p, err
		}
		p.Kind = &k
	}
	if flags.Changed("category") {
		c := strings.TrimSpace(flagUpdCategory)
		if c == "" {
			c = "General"
		}
		p.Category = &c
	}
	if flags.Changed("every") {
		iv := model.None
		if !strings.EqualFold(flagUpdEvery, "none") {
			parsed, err := model.ParseInterval(flagUpdEvery)
			if err != nil {
				return p, err
			}
			iv = parsed
		}
		recurring := iv != model.None
		p.Interval = &iv
		p.Recurring = &recurring
	}
	return p, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	p, err := buildPatch(cmd)
	if err != nil {
		return err
	}
	if p.IsEmpty() {
		return errors.New("nothing to change: pass at least one of --date, --title, --amount, --type, --category, --every")
	}

	return withBook(func(b *pipeline.Book) (bool, error) {
		r, err := findRecord(b.Ledger, args[0])
		if err != nil {
			return false, err
		}

		pipeline.UntrackExpense(b.Ledger.Budgets(), r)
		b.Ledger.Update(r, p)
		pipeline.TrackExpense(b.Ledger.Budgets(), r)

		fmt.Printf("  Updated #%d %s  %s  %s\n", r.ID, r.Date, r.Title, cli.FormatSigned(r.Amount, r.Kind, currency))
		return true, nil
	})
}

func runDelete(_ *cobra.Command, args []string) error {
	return withBook(func(b *pipeline.Book) (bool, error) {
		// Resolve every ID first so a typo deletes nothing.
		targets := make([]*ledger.Record, 0, len(args))
		for _, arg := range args {
			r, err := findRecord(b.Ledger, arg)
			if err != nil {
				return false, err
			}
			targets = append(targets, r)
		}

		for _, r := range targets {
			if !r.Live() {
				continue // same ID given twice
			}
			pipeline.UntrackExpense(b.Ledger.Budgets(), r)
			b.Ledger.Delete(r)
			fmt.Printf("  Deleted #%d %s  %s\n", r.ID, r.Date, r.Title)
		}
		return true, nil
	})
}
