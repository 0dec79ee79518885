package cmd

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

func resetUpdateFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		updateCmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})
}

func TestBuildPatchOnlyChangedFlags(t *testing.T) {
	resetUpdateFlags(t)
	if err := updateCmd.ParseFlags([]string{"--amount", "1,500", "--every", "none"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	p, err := buildPatch(updateCmd)
	if err != nil {
		t.Fatalf("buildPatch: %v", err)
	}
	if p.Amount == nil || !p.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("amount = %v, want 1500", p.Amount)
	}
	if p.Interval == nil || *p.Interval != model.None || p.Recurring == nil || *p.Recurring {
		t.Fatalf("recurrence not switched off: %+v", p)
	}
	if p.Date != nil || p.Title != nil || p.Kind != nil || p.Category != nil {
		t.Fatalf("unset flags leaked into patch: %+v", p)
	}
}

func TestBuildPatchRejectsBadValues(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"--amount=-3"}, pipeline.ErrInvalidAmount},
		{[]string{"--type", "refund"}, model.ErrInvalidKind},
		{[]string{"--date", "2024-13-01"}, model.ErrInvalidDate},
		{[]string{"--title", "  "}, pipeline.ErrEmptyTitle},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			resetUpdateFlags(t)
			if err := updateCmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}
			if _, err := buildPatch(updateCmd); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNextDueAndCountDue(t *testing.T) {
	l := ledger.New()
	rent := l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-01-31"), Title: "Rent", Amount: decimal.NewFromInt(800),
		Kind: model.Expense, Category: "Housing", Recurring: true, Interval: model.Monthly,
	})
	gym := l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-02-20"), Title: "Gym", Amount: decimal.NewFromInt(30),
		Kind: model.Expense, Category: "Health", Recurring: true, Interval: model.Weekly,
	})
	coffee := l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-02-21"), Title: "Coffee", Amount: decimal.NewFromInt(5),
		Kind: model.Expense, Category: "Food",
	})

	if due, ok := nextDue(l, rent); !ok || due.String() != "2024-02-29" {
		t.Fatalf("rent next = %v, %v", due, ok)
	}
	if _, ok := nextDue(l, coffee); ok {
		t.Fatal("one-off record has a next due date")
	}

	day := model.MustParseDate("2024-02-29")
	if n := countDue(l, day); n != 2 {
		t.Fatalf("countDue(%s) = %d, want 2", day, n)
	}

	l.Delete(gym)
	if n := countDue(l, day); n != 1 {
		t.Fatalf("countDue after delete = %d, want 1", n)
	}
}

func TestFindRecord(t *testing.T) {
	l := ledger.New()
	r := l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-03-01"), Title: "Lunch", Amount: decimal.NewFromInt(12),
		Kind: model.Expense, Category: "Food",
	})

	got, err := findRecord(l, "1")
	if err != nil || got != r {
		t.Fatalf("findRecord(1) = %v, %v", got, err)
	}
	if _, err := findRecord(l, "abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := findRecord(l, "99"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
