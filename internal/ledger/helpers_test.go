package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/flowtrack/internal/model"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(s string) model.Date { return model.MustParseDate(s) }

func expense(day string, amount int64) NewRecord {
	return NewRecord{Date: date(day), Title: "expense", Amount: dec(amount), Kind: model.Expense, Category: "Misc"}
}

func income(day string, amount int64) NewRecord {
	return NewRecord{Date: date(day), Title: "income", Amount: dec(amount), Kind: model.Income, Category: "Work"}
}

func ids(seq []*Record) []int64 {
	out := make([]int64, len(seq))
	for i, r := range seq {
		out[i] = r.ID
	}
	return out
}

func collect(l *Ledger) []*Record {
	var out []*Record
	for r := range l.All() {
		out = append(out, r)
	}
	return out
}

// requireConsistent checks the balance identity, the list links and the
// heap maximum against a brute-force scan.
func requireConsistent(t *testing.T, l *Ledger) {
	t.Helper()

	wantIncome, wantExpense := decimal.Zero, decimal.Zero
	var maxExp *Record
	n := 0
	var prev *Record
	for r := l.store.head; r != nil; r = r.next {
		require.Same(t, prev, r.prev, "prev link of %d", r.ID)
		prev = r
		n++
		switch r.Kind {
		case model.Income:
			wantIncome = wantIncome.Add(r.Amount)
		case model.Expense:
			wantExpense = wantExpense.Add(r.Amount)
			if maxExp == nil || r.Amount.GreaterThan(maxExp.Amount) {
				maxExp = r
			}
		}
	}
	require.Same(t, prev, l.store.tail)
	require.Equal(t, n, l.Len())

	st := l.Stats()
	require.True(t, st.TotalIncome.Equal(wantIncome), "income %s != %s", st.TotalIncome, wantIncome)
	require.True(t, st.TotalExpense.Equal(wantExpense), "expense %s != %s", st.TotalExpense, wantExpense)
	require.True(t, st.Balance.Equal(wantIncome.Sub(wantExpense)))

	top, ok := l.HighestExpense()
	if maxExp == nil {
		require.False(t, ok)
		return
	}
	require.True(t, ok)
	require.True(t, top.Amount.Equal(maxExp.Amount), "heap max %s, scan max %s", top.Amount, maxExp.Amount)
}
