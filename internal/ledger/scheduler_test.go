package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/flowtrack/internal/model"
)

func TestNextDate(t *testing.T) {
	tests := []struct {
		from string
		iv   model.Interval
		want string
	}{
		{"2024-01-31", model.Monthly, "2024-02-29"},
		{"2025-01-31", model.Monthly, "2025-02-28"},
		{"2024-03-31", model.Monthly, "2024-04-30"},
		{"2024-12-15", model.Monthly, "2025-01-15"},
		{"2024-12-29", model.Weekly, "2025-01-05"},
		{"2024-02-26", model.Weekly, "2024-03-04"},
		{"2024-06-01", model.None, "2024-06-01"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"/"+tt.iv.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NextDate(date(tt.from), tt.iv).String())
		})
	}
}

func TestScheduleNextMonthEndClamps(t *testing.T) {
	var s Scheduler
	x := &Record{ID: 1, Recurring: true, Interval: model.Monthly}
	e, ok := s.ScheduleNext(x, date("2024-01-31"))
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", e.Due.String())

	front, ok := s.PeekFront()
	require.True(t, ok)
	assert.Same(t, x, front.Record)
	assert.Equal(t, e.Due, front.Due)
}

func TestScheduleNextIgnoresNonRecurring(t *testing.T) {
	var s Scheduler
	_, ok := s.ScheduleNext(&Record{ID: 1}, date("2024-01-01"))
	assert.False(t, ok)
	_, ok = s.ScheduleNext(&Record{ID: 2, Recurring: true}, date("2024-01-01"))
	assert.False(t, ok, "recurring without interval")
	_, ok = s.ScheduleNext(nil, date("2024-01-01"))
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestCollectDuePartitions(t *testing.T) {
	var s Scheduler
	dues := []string{"2024-03-01", "2024-05-01", "2024-02-10", "2024-04-01", "2024-03-15", "2024-06-01"}
	for i, d := range dues {
		s.Enqueue(Entry{Record: &Record{ID: int64(i + 1)}, Due: date(d)})
	}

	got := s.CollectDue(date("2024-03-15"))
	var gotIDs []int64
	for _, e := range got {
		gotIDs = append(gotIDs, e.Record.ID)
	}
	assert.Equal(t, []int64{1, 3, 5}, gotIDs, "due entries in enqueue order")

	var restIDs []int64
	for _, e := range s.Entries() {
		restIDs = append(restIDs, e.Record.ID)
	}
	assert.Equal(t, []int64{2, 4, 6}, restIDs, "pending entries keep order")

	assert.Empty(t, s.CollectDue(date("2024-01-01")))
	assert.Equal(t, 3, s.Len())
}

func TestDequeueFrontAndEvict(t *testing.T) {
	var s Scheduler
	a, b := &Record{ID: 1}, &Record{ID: 2}
	s.Enqueue(Entry{Record: a, Due: date("2024-01-01")})
	s.Enqueue(Entry{Record: b, Due: date("2024-01-02")})
	s.Enqueue(Entry{Record: a, Due: date("2024-01-03")})

	assert.Equal(t, 2, s.Evict(a))
	e, ok := s.DequeueFront()
	require.True(t, ok)
	assert.Same(t, b, e.Record)
	_, ok = s.DequeueFront()
	assert.False(t, ok)
	_, ok = s.PeekFront()
	assert.False(t, ok)
}
