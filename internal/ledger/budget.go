package ledger

import (
	"github.com/shopspring/decimal"
)

// DefaultNearLimit is the spent percentage at which a budget is reported as
// close to its limit.
const DefaultNearLimit = 80.0

var hundred = decimal.NewFromInt(100)

// BudgetNode is the spending limit and running spend for one month.
type BudgetNode struct {
	Month string // "YYYY-MM"
	Limit decimal.Decimal
	Spent decimal.Decimal

	left, right *BudgetNode
}

// Remaining returns Limit - Spent. It is negative once over budget.
func (n *BudgetNode) Remaining() decimal.Decimal {
	return n.Limit.Sub(n.Spent)
}

// Percentage returns Spent as a percentage of Limit, or 0 for a zero limit.
func (n *BudgetNode) Percentage() float64 {
	if n.Limit.IsZero() {
		return 0
	}
	return n.Spent.Div(n.Limit).Mul(hundred).InexactFloat64()
}

func (n *BudgetNode) IsOverBudget() bool { return n.Spent.GreaterThan(n.Limit) }

// IsNearLimit reports whether Percentage has reached threshold.
func (n *BudgetNode) IsNearLimit(threshold float64) bool {
	return n.Percentage() >= threshold
}

// BudgetIndex is an unbalanced binary search tree of budgets keyed by
// month. "YYYY-MM" keys sort lexically in calendar order.
type BudgetIndex struct {
	root *BudgetNode
	n    int
}

// SetBudget creates the month's node or overwrites its limit, keeping any
// spend already accumulated.
func (b *BudgetIndex) SetBudget(month string, limit decimal.Decimal) *BudgetNode {
	link := &b.root
	for *link != nil {
		node := *link
		switch {
		case month < node.Month:
			link = &node.left
		case month > node.Month:
			link = &node.right
		default:
			node.Limit = limit
			return node
		}
	}
	node := &BudgetNode{Month: month, Limit: limit}
	*link = node
	b.n++
	return node
}

// Restore sets both limit and spend for month, creating the node if needed.
func (b *BudgetIndex) Restore(month string, limit, spent decimal.Decimal) *BudgetNode {
	node := b.SetBudget(month, limit)
	node.Spent = spent
	return node
}

// Find returns the node for month.
func (b *BudgetIndex) Find(month string) (*BudgetNode, bool) {
	node := b.root
	for node != nil {
		switch {
		case month < node.Month:
			node = node.left
		case month > node.Month:
			node = node.right
		default:
			return node, true
		}
	}
	return nil, false
}

// Accumulate adds amount to the month's spend. Months without a budget are
// ignored.
func (b *BudgetIndex) Accumulate(month string, amount decimal.Decimal) {
	if node, ok := b.Find(month); ok {
		node.Spent = node.Spent.Add(amount)
	}
}

// Remove deletes the month's node and reports whether it existed.
func (b *BudgetIndex) Remove(month string) bool {
	var removed bool
	b.root = removeNode(b.root, month, &removed)
	if removed {
		b.n--
	}
	return removed
}

func removeNode(node *BudgetNode, month string, removed *bool) *BudgetNode {
	if node == nil {
		return nil
	}
	switch {
	case month < node.Month:
		node.left = removeNode(node.left, month, removed)
		return node
	case month > node.Month:
		node.right = removeNode(node.right, month, removed)
		return node
	}

	*removed = true
	if node.left == nil {
		return node.right
	}
	if node.right == nil {
		return node.left
	}

	// Two children: take the in-order successor's payload, then delete the
	// successor from the right subtree.
	succ := node.right
	for succ.left != nil {
		succ = succ.left
	}
	node.Month, node.Limit, node.Spent = succ.Month, succ.Limit, succ.Spent
	var ignored bool
	node.right = removeNode(node.right, succ.Month, &ignored)
	return node
}

// AllInOrder returns every node in ascending month order.
func (b *BudgetIndex) AllInOrder() []*BudgetNode {
	out := make([]*BudgetNode, 0, b.n)
	var walk func(*BudgetNode)
	walk = func(n *BudgetNode) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n)
		walk(n.right)
	}
	walk(b.root)
	return out
}

// Range returns nodes with start <= month <= end in ascending order,
// skipping subtrees that cannot hold keys in range.
func (b *BudgetIndex) Range(start, end string) []*BudgetNode {
	var out []*BudgetNode
	var walk func(*BudgetNode)
	walk = func(n *BudgetNode) {
		if n == nil {
			return
		}
		if start < n.Month {
			walk(n.left)
		}
		if start <= n.Month && n.Month <= end {
			out = append(out, n)
		}
		if n.Month < end {
			walk(n.right)
		}
	}
	walk(b.root)
	return out
}

func (b *BudgetIndex) Len() int { return b.n }

// preOrder returns nodes root first. Inserting them in this order rebuilds
// the same tree.
func (b *BudgetIndex) preOrder() []*BudgetNode {
	out := make([]*BudgetNode, 0, b.n)
	stack := []*BudgetNode{}
	if b.root != nil {
		stack = append(stack, b.root)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return out
}
