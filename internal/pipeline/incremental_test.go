package pipeline

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/export"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

func TestMergeSkipsDuplicates(t *testing.T) {
	l := seedLedger(t)
	node := l.Budgets().SetBudget("2024-12", decimal.NewFromInt(1000))

	snap := ledger.Snapshot{Transactions: []ledger.SnapshotRecord{
		{ID: 1, Date: "2024-12-01", Title: "Coffee", Amount: "200", Type: "Expense", Category: "Food"},
		{ID: 2, Date: "2024-12-04", Title: "Books", Amount: "45.5", Type: "Expense", Category: "Leisure"},
		{ID: 3, Date: "2024-12-04", Title: "Books", Amount: "45.5", Type: "Expense", Category: "Leisure"},
		{ID: 4, Date: "yesterday", Title: "Broken", Amount: "1", Type: "Expense"},
	}}

	res := Merge(l, snap)
	if res.Added != 1 || res.Duplicates != 2 || res.Invalid != 1 {
		t.Fatalf("result = %+v", res)
	}
	if l.Len() != 6 {
		t.Fatalf("len = %d, want 6", l.Len())
	}
	head := Collect(l)[0]
	if head.Title != "Books" || head.ID != 6 {
		t.Fatalf("head = %d %s", head.ID, head.Title)
	}
	if !node.Spent.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("budget spent = %s", node.Spent)
	}
}

func TestMergeResumesRecurringSeries(t *testing.T) {
	src := ledger.New()
	src.Insert(ledger.NewRecord{
		Date:      model.MustParseDate("2024-01-01"),
		Title:     "Rent",
		Amount:    decimal.NewFromInt(800),
		Kind:      model.Expense,
		Category:  "Housing",
		Recurring: true,
		Interval:  model.Monthly,
	})
	if n := len(src.PostDue(model.MustParseDate("2024-03-15"))); n != 2 {
		t.Fatalf("posted %d, want 2", n)
	}

	var buf bytes.Buffer
	if _, err := export.WriteCSV(&buf, src.All()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	snap, err := export.ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	l := ledger.New()
	if res := Merge(l, snap); res.Added != 3 {
		t.Fatalf("result = %+v", res)
	}
	entries := l.Scheduler().Entries()
	if len(entries) != 1 || entries[0].Due.String() != "2024-04-01" {
		t.Fatalf("pending = %v, want one entry due 2024-04-01", entries)
	}

	posted := l.PostDue(model.MustParseDate("2024-04-15"))
	if len(posted) != 1 || posted[0].Date.String() != "2024-04-01" {
		t.Fatalf("posted %d records after import, want only 2024-04-01", len(posted))
	}
}
