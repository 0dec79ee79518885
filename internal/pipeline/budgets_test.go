package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBudgetReportStates(t *testing.T) {
	l := seedLedger(t)
	idx := l.Budgets()
	idx.SetBudget("2024-11", decimal.NewFromInt(1000))
	idx.SetBudget("2024-12", decimal.NewFromInt(600))
	idx.SetBudget("2025-01", decimal.NewFromInt(100))
	RecomputeSpent(l)

	rows := BudgetReport(idx.AllInOrder(), 80)
	want := []BudgetState{BudgetOver, BudgetNear, BudgetOK}
	for i, r := range rows {
		if r.State != want[i] {
			t.Fatalf("%s state = %s, want %s", r.Month, r.State, want[i])
		}
	}
	if !rows[1].Remaining.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("december remaining = %s", rows[1].Remaining)
	}
}

func TestTrackAndUntrack(t *testing.T) {
	l := seedLedger(t)
	idx := l.Budgets()
	node := idx.SetBudget("2024-12", decimal.NewFromInt(1000))

	for r := range l.All() {
		TrackExpense(idx, r)
	}
	if !node.Spent.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("spent = %s, want 500", node.Spent)
	}

	r, _ := l.FindByID(3)
	UntrackExpense(idx, r)
	if !node.Spent.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("spent after untrack = %s, want 200", node.Spent)
	}
}

func TestSetBudgetSeedsSpend(t *testing.T) {
	l := seedLedger(t)

	node := SetBudget(l, "2024-12", decimal.NewFromInt(1000))
	if !node.Spent.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("new budget spent = %s, want 500", node.Spent)
	}

	// Changing the limit keeps the tracked spend.
	node.Spent = decimal.NewFromInt(42)
	again := SetBudget(l, "2024-12", decimal.NewFromInt(800))
	if again != node || !again.Spent.Equal(decimal.NewFromInt(42)) || !again.Limit.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("updated budget = %+v", again)
	}

	if empty := SetBudget(l, "2025-02", decimal.NewFromInt(10)); !empty.Spent.IsZero() {
		t.Fatalf("month without expenses spent = %s", empty.Spent)
	}
}
