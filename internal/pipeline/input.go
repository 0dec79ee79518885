package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

var (
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrInvalidAmount = errors.New("invalid amount")
)

// RecordInput is a transaction as a user typed it. Kind defaults to
// expense and an empty Date means today. Any Interval other than ""
// or "none" makes the record recurring.
type RecordInput struct {
	Date     string
	Title    string
	Amount   string
	Kind     string
	Category string
	Interval string
}

// Parse validates in and converts it for Ledger.Insert.
func (in RecordInput) Parse(today model.Date) (ledger.NewRecord, error) {
	var nr ledger.NewRecord

	nr.Title = strings.TrimSpace(in.Title)
	if nr.Title == "" {
		return nr, ErrEmptyTitle
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nr, err
	}
	nr.Amount = amount

	nr.Date = today
	if s := strings.TrimSpace(in.Date); s != "" {
		if nr.Date, err = model.ParseDate(s); err != nil {
			return nr, err
		}
	}

	nr.Kind = model.Expense
	if strings.TrimSpace(in.Kind) != "" {
		if nr.Kind, err = model.ParseKind(in.Kind); err != nil {
			return nr, err
		}
	}

	if nr.Interval, err = model.ParseInterval(in.Interval); err != nil {
		return nr, err
	}
	nr.Recurring = nr.Interval != model.None

	nr.Category = strings.TrimSpace(in.Category)
	if nr.Category == "" {
		nr.Category = "General"
	}
	return nr, nil
}

// ParseAmount parses a positive decimal amount. Underscores and commas
// are accepted as digit separators ("1_500", "1,500").
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w %q: must be greater than zero", ErrInvalidAmount, s)
	}
	return d, nil
}
