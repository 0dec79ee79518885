// Package ledger holds the in-memory transaction ledger: a newest-first
// store, a max-heap of expenses, a per-month budget tree and a FIFO of
// recurring occurrences, all owned and kept consistent by Ledger.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/model"
)

// Record is one income or expense transaction.
//
// Fields are exported for reading. Mutations must go through Ledger.Update
// so that totals, the expense heap and the scheduler stay in step.
type Record struct {
	ID        int64
	Date      model.Date
	Title     string
	Amount    decimal.Decimal
	Kind      model.Kind
	Category  string
	Recurring bool
	Interval  model.Interval

	next, prev *Record
	store      *Store
}

// Next returns the next older record, or nil.
func (r *Record) Next() *Record {
	if r.store == nil {
		return nil
	}
	return r.next
}

// Prev returns the next newer record, or nil.
func (r *Record) Prev() *Record {
	if r.store == nil {
		return nil
	}
	return r.prev
}

// Live reports whether the record is still linked into a store.
func (r *Record) Live() bool { return r != nil && r.store != nil }

// IsExpense reports whether the record counts toward expenses.
func (r *Record) IsExpense() bool { return r.Kind == model.Expense }

// Schedulable reports whether the record should produce future occurrences.
func (r *Record) Schedulable() bool {
	return r.Recurring && r.Interval != model.None
}

// NewRecord carries the caller-supplied fields of a record to insert.
// The ledger assigns the ID.
type NewRecord struct {
	Date      model.Date
	Title     string
	Amount    decimal.Decimal
	Kind      model.Kind
	Category  string
	Recurring bool
	Interval  model.Interval
}

// Patch lists the fields to change in Ledger.Update. Nil fields are left
// untouched.
type Patch struct {
	Date      *model.Date
	Title     *string
	Amount    *decimal.Decimal
	Kind      *model.Kind
	Category  *string
	Recurring *bool
	Interval  *model.Interval
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Title == nil && p.Amount == nil && p.Kind == nil &&
		p.Category == nil && p.Recurring == nil && p.Interval == nil
}
