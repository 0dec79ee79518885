package ledger

import (
	"github.com/theirongolddev/flowtrack/internal/model"
)

// Entry is one pending occurrence of a recurring record.
type Entry struct {
	Record *Record
	Due    model.Date
}

// Scheduler is a FIFO of pending occurrences. Entries keep their enqueue
// order until they are removed.
type Scheduler struct {
	queue []Entry
}

// NextDate advances from by one interval. Monthly steps clamp to the last
// day of the target month. None returns from unchanged.
func NextDate(from model.Date, iv model.Interval) model.Date {
	return NextDateOn(from, iv, from.Day())
}

// NextDateOn is NextDate for a series anchored on a day of the month.
// Monthly steps land on anchor, or on the last day of shorter months.
func NextDateOn(from model.Date, iv model.Interval, anchor int) model.Date {
	switch iv {
	case model.Weekly:
		return from.AddDays(7)
	case model.Monthly:
		return from.AddMonthOnDay(anchor)
	default:
		return from
	}
}

// ScheduleNext enqueues the occurrence of r one interval after start. It
// is a no-op for records that are not recurring or have no interval.
func (s *Scheduler) ScheduleNext(r *Record, start model.Date) (Entry, bool) {
	if r == nil || !r.Schedulable() {
		return Entry{}, false
	}
	e := Entry{Record: r, Due: NextDate(start, r.Interval)}
	s.queue = append(s.queue, e)
	return e, true
}

// Enqueue appends e as is.
func (s *Scheduler) Enqueue(e Entry) {
	s.queue = append(s.queue, e)
}

// DequeueFront removes and returns the oldest entry.
func (s *Scheduler) DequeueFront() (Entry, bool) {
	if len(s.queue) == 0 {
		return Entry{}, false
	}
	e := s.queue[0]
	s.queue[0] = Entry{}
	s.queue = s.queue[1:]
	return e, true
}

// PeekFront returns the oldest entry without removing it.
func (s *Scheduler) PeekFront() (Entry, bool) {
	if len(s.queue) == 0 {
		return Entry{}, false
	}
	return s.queue[0], true
}

// CollectDue removes and returns every entry due on or before today, in
// enqueue order. Entries not yet due keep their relative order.
func (s *Scheduler) CollectDue(today model.Date) []Entry {
	var due []Entry
	kept := s.queue[:0]
	for _, e := range s.queue {
		if e.Due.After(today) {
			kept = append(kept, e)
		} else {
			due = append(due, e)
		}
	}
	clear(s.queue[len(kept):])
	s.queue = kept
	return due
}

// Evict drops every entry for r and returns how many were removed.
func (s *Scheduler) Evict(r *Record) int {
	kept := s.queue[:0]
	for _, e := range s.queue {
		if e.Record != r {
			kept = append(kept, e)
		}
	}
	n := len(s.queue) - len(kept)
	clear(s.queue[len(kept):])
	s.queue = kept
	return n
}

// Entries returns a copy of the queue, front first.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, len(s.queue))
	copy(out, s.queue)
	return out
}

func (s *Scheduler) Len() int { return len(s.queue) }
