package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// BudgetState classifies a month's spend against its limit.
type BudgetState string

const (
	BudgetOK   BudgetState = "ok"
	BudgetNear BudgetState = "near"
	BudgetOver BudgetState = "over"
)

// BudgetRow is one month of a budget report.
type BudgetRow struct {
	Month     string
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Percent   float64
	State     BudgetState
}

// BudgetReport flattens budget nodes into report rows, keeping their order.
func BudgetReport(nodes []*ledger.BudgetNode, nearLimit float64) []BudgetRow {
	rows := make([]BudgetRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, budgetRow(n, nearLimit))
	}
	return rows
}

func budgetRow(n *ledger.BudgetNode, nearLimit float64) BudgetRow {
	state := BudgetOK
	switch {
	case n.IsOverBudget():
		state = BudgetOver
	case n.IsNearLimit(nearLimit):
		state = BudgetNear
	}
	return BudgetRow{
		Month:     n.Month,
		Limit:     n.Limit,
		Spent:     n.Spent,
		Remaining: n.Remaining(),
		Percent:   n.Percentage(),
		State:     state,
	}
}

// TrackExpense adds an expense to its month's budget spend. Income and
// months without a budget are ignored.
func TrackExpense(idx *ledger.BudgetIndex, r *ledger.Record) {
	if r.Kind == model.Expense {
		idx.Accumulate(r.Date.MonthKey(), r.Amount)
	}
}

// UntrackExpense reverses TrackExpense, for deletes and before updates.
func UntrackExpense(idx *ledger.BudgetIndex, r *ledger.Record) {
	if r.Kind == model.Expense {
		idx.Accumulate(r.Date.MonthKey(), r.Amount.Neg())
	}
}

// RecomputeSpent resets every budget's spend to the sum of the month's
// expenses currently in the ledger.
func RecomputeSpent(l *ledger.Ledger) {
	spent := make(map[string]decimal.Decimal)
	for r := range l.All() {
		if r.Kind == model.Expense {
			key := r.Date.MonthKey()
			spent[key] = spent[key].Add(r.Amount)
		}
	}
	for _, n := range l.Budgets().AllInOrder() {
		n.Spent = spent[n.Month]
	}
}

// SetBudget sets month's limit. A month that had no budget starts with
// the expenses already recorded for it as its spend.
func SetBudget(l *ledger.Ledger, month string, limit decimal.Decimal) *ledger.BudgetNode {
	_, existed := l.Budgets().Find(month)
	node := l.Budgets().SetBudget(month, limit)
	if existed {
		return node
	}
	for r := range l.All() {
		if r.Kind == model.Expense && r.Date.MonthKey() == month {
			node.Spent = node.Spent.Add(r.Amount)
		}
	}
	return node
}
