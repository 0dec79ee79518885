package ledger

import (
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// A recurring record is the root of its series. PostDue inserts each
// occurrence as a plain record and moves the root's single pending entry
// forward, so stopping, changing or deleting the root governs the series.

// sameOccurrence reports whether a and b carry the same transaction
// fields, ignoring date and recurrence.
func sameOccurrence(a, b *Record) bool {
	return a.Title == b.Title &&
		a.Category == b.Category &&
		a.Kind == b.Kind &&
		a.Amount.Equal(b.Amount)
}

// onChain reports whether d is an occurrence date of root's series.
func onChain(root *Record, d model.Date) bool {
	if !root.Schedulable() {
		return false
	}
	anchor := root.Date.Day()
	due := root.Date
	for due.Before(d) {
		due = NextDateOn(due, root.Interval, anchor)
	}
	return due.Equal(d)
}

// postedBy returns the live recurring record whose series r is an earlier
// posted occurrence of. Files written before occurrences were stored as
// plain records hold such copies with the recurring flag still set.
func (l *Ledger) postedBy(r *Record) (*Record, bool) {
	for o := range l.store.All() {
		if o != r && o.Schedulable() && o.Interval == r.Interval &&
			o.Date.Before(r.Date) && sameOccurrence(o, r) && onChain(o, r.Date) {
			return o, true
		}
	}
	return nil, false
}

// resumeDate returns the first date of root's series after the latest
// occurrence already in the ledger, root's own date included.
func (l *Ledger) resumeDate(root *Record) model.Date {
	last := root.Date
	for o := range l.store.All() {
		if o != root && o.Date.After(last) && sameOccurrence(o, root) {
			last = o.Date
		}
	}
	anchor := root.Date.Day()
	due := NextDateOn(root.Date, root.Interval, anchor)
	for !due.After(last) {
		due = NextDateOn(due, root.Interval, anchor)
	}
	return due
}

// Reschedule drops the pending entries of the given records and enqueues
// each recurring one again, due on the first date of its series after the
// latest occurrence already in the ledger. A record that is itself a posted
// occurrence of an older series gets no entry. It returns the number of
// entries enqueued.
func (l *Ledger) Reschedule(rs ...*Record) int {
	n := 0
	for _, r := range rs {
		if r == nil || r.store != l.store {
			continue
		}
		l.sched.Evict(r)
		if !r.Schedulable() {
			continue
		}
		if root, ok := l.postedBy(r); ok {
			l.logger.Debug("not scheduling posted occurrence",
				log.FieldID, r.ID,
				"source", root.ID,
			)
			continue
		}
		l.sched.Enqueue(Entry{Record: r, Due: l.resumeDate(r)})
		n++
	}
	return n
}
