package pipeline

import (
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// MergeResult counts what Merge did.
type MergeResult struct {
	Added      int
	Duplicates int
	Invalid    int
}

type recordKey struct {
	date, title, amount string
	kind                model.Kind
}

func keyOf(date, title, amount string, kind model.Kind) recordKey {
	return recordKey{date: date, title: title, amount: amount, kind: kind}
}

// Merge inserts the records of snap that the ledger does not already hold.
// Two records match on date, title, amount and kind. Imported records get
// fresh IDs and are tracked against budgets. Recurring ones resume after
// the latest occurrence of their series once every record is in.
func Merge(l *ledger.Ledger, snap ledger.Snapshot) MergeResult {
	seen := make(map[recordKey]struct{}, l.Len())
	for r := range l.All() {
		seen[keyOf(r.Date.String(), r.Title, r.Amount.String(), r.Kind)] = struct{}{}
	}

	// Parse through a scratch ledger so the snapshot is validated by the
	// same rules as a load.
	scratch := ledger.New()
	var res MergeResult
	var recurring []*ledger.Record
	for _, sr := range snap.Transactions {
		one := ledger.Snapshot{Transactions: []ledger.SnapshotRecord{sr}, Schedule: []ledger.SnapshotEntry{}}
		if err := scratch.Restore(one); err != nil {
			res.Invalid++
			continue
		}
		src, _ := scratch.FindByID(sr.ID)

		k := keyOf(src.Date.String(), src.Title, src.Amount.String(), src.Kind)
		if _, dup := seen[k]; dup {
			res.Duplicates++
			continue
		}
		seen[k] = struct{}{}

		r := l.Insert(ledger.NewRecord{
			Date:      src.Date,
			Title:     src.Title,
			Amount:    src.Amount,
			Kind:      src.Kind,
			Category:  src.Category,
			Recurring: src.Recurring,
			Interval:  src.Interval,
		})
		TrackExpense(l.Budgets(), r)
		if r.Schedulable() {
			recurring = append(recurring, r)
		}
		res.Added++
	}
	l.Reschedule(recurring...)
	return res
}
