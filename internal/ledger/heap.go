package ledger

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

type expenseSlot struct {
	amount decimal.Decimal
	rec    *Record
}

// expenseSlots implements heap.Interface as a max-heap on amount.
type expenseSlots []expenseSlot

func (s expenseSlots) Len() int           { return len(s) }
func (s expenseSlots) Less(i, j int) bool { return s[i].amount.GreaterThan(s[j].amount) }
func (s expenseSlots) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func (s *expenseSlots) Push(x any) { *s = append(*s, x.(expenseSlot)) }

func (s *expenseSlots) Pop() any {
	old := *s
	n := len(old)
	x := old[n-1]
	old[n-1] = expenseSlot{}
	*s = old[:n-1]
	return x
}

// ExpenseHeap answers "largest expense" in O(1). It has no arbitrary
// delete: removals and amount changes are handled with RebuildFrom.
type ExpenseHeap struct {
	slots expenseSlots
}

// Insert adds r keyed by amount.
func (h *ExpenseHeap) Insert(amount decimal.Decimal, r *Record) {
	heap.Push(&h.slots, expenseSlot{amount: amount, rec: r})
}

// PeekMax returns the record with the largest amount.
func (h *ExpenseHeap) PeekMax() (*Record, bool) {
	if len(h.slots) == 0 {
		return nil, false
	}
	return h.slots[0].rec, true
}

// MaxAmount returns the largest amount in the heap.
func (h *ExpenseHeap) MaxAmount() (decimal.Decimal, bool) {
	if len(h.slots) == 0 {
		return decimal.Zero, false
	}
	return h.slots[0].amount, true
}

// RebuildFrom discards the heap and refills it with every expense in s
// using a bottom-up heapify.
func (h *ExpenseHeap) RebuildFrom(s *Store) {
	clear(h.slots)
	h.slots = h.slots[:0]
	for r := range s.All() {
		if r.IsExpense() {
			h.slots = append(h.slots, expenseSlot{amount: r.Amount, rec: r})
		}
	}
	heap.Init(&h.slots)
}

func (h *ExpenseHeap) Len() int { return len(h.slots) }
