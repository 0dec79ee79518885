package ledger

import "iter"

// Store is a doubly linked list of records, most recently inserted first.
// The zero value is an empty store.
type Store struct {
	head, tail *Record
	n          int
}

// InsertFront links r in as the new head. Nil and records already owned by
// a store are ignored.
func (s *Store) InsertFront(r *Record) {
	if r == nil || r.store != nil {
		return
	}
	r.store = s
	r.prev = nil
	r.next = s.head
	if s.head != nil {
		s.head.prev = r
	} else {
		s.tail = r
	}
	s.head = r
	s.n++
}

// Remove unlinks r. It returns false if r is nil or not in this store.
func (s *Store) Remove(r *Record) bool {
	if r == nil || r.store != s {
		return false
	}
	if r.prev != nil {
		r.prev.next = r.next
	} else {
		s.head = r.next
	}
	if r.next != nil {
		r.next.prev = r.prev
	} else {
		s.tail = r.prev
	}
	r.next, r.prev, r.store = nil, nil, nil
	s.n--
	return true
}

// FindByID scans from the head for the record with the given id.
func (s *Store) FindByID(id int64) (*Record, bool) {
	for r := s.head; r != nil; r = r.next {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// All yields records from newest to oldest. The successor is read before
// each yield, so the current record may be removed while iterating.
func (s *Store) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for r := s.head; r != nil; {
			next := r.next
			if !yield(r) {
				return
			}
			r = next
		}
	}
}

// Backward yields records from oldest to newest.
func (s *Store) Backward() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for r := s.tail; r != nil; {
			prev := r.prev
			if !yield(r) {
				return
			}
			r = prev
		}
	}
}

func (s *Store) Head() *Record { return s.head }
func (s *Store) Tail() *Record { return s.tail }
func (s *Store) Len() int      { return s.n }
