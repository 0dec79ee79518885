package ledger

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
)

// Ledger owns every record and the indexes built over them. All mutation
// goes through it. A Ledger is not safe for concurrent use.
type Ledger struct {
	store   *Store
	heap    ExpenseHeap
	budgets BudgetIndex
	sched   Scheduler

	nextID       int64
	totalIncome  decimal.Decimal
	totalExpense decimal.Decimal

	logger *log.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for mutation and load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(led *Ledger) {
		if l != nil {
			led.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

// New returns an empty ledger whose first record will get ID 1.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		store:  &Store{},
		nextID: 1,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DateGroup is the records sharing one date, in store order.
type DateGroup struct {
	Date    model.Date
	Records []*Record
}

// Insert assigns the next ID to a new record, links it in as the newest
// and updates totals, the expense heap and the scheduler.
func (l *Ledger) Insert(nr NewRecord) *Record {
	r := &Record{
		ID:        l.nextID,
		Date:      nr.Date,
		Title:     nr.Title,
		Amount:    nr.Amount,
		Kind:      nr.Kind,
		Category:  nr.Category,
		Recurring: nr.Recurring,
		Interval:  nr.Interval,
	}
	l.nextID++
	l.link(r, true)
	l.logger.Debug("inserted", log.NewFields().
		WithOperation(log.OpInsert).
		WithTransaction(r.ID, r.Date.String(), r.Kind.String(), r.Amount.String()).
		ToSlice()...)
	return r
}

func (l *Ledger) link(r *Record, schedule bool) {
	l.store.InsertFront(r)
	l.addContribution(r.Kind, r.Amount)
	if r.IsExpense() {
		l.heap.Insert(r.Amount, r)
	}
	if schedule {
		l.sched.ScheduleNext(r, r.Date)
	}
}

// Delete removes r. It returns false if r is nil or no longer in the
// ledger.
func (l *Ledger) Delete(r *Record) bool {
	if r == nil || r.store != l.store {
		return false
	}
	l.subContribution(r.Kind, r.Amount)
	l.store.Remove(r)
	if r.IsExpense() {
		l.heap.RebuildFrom(l.store)
	}
	evicted := l.sched.Evict(r)
	l.logger.Debug("deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldID, r.ID,
		"evicted", evicted,
	)
	return true
}

// Update applies p to r in place. The ID never changes. It returns false if
// r is nil or no longer in the ledger.
func (l *Ledger) Update(r *Record, p Patch) bool {
	if r == nil || r.store != l.store {
		return false
	}

	oldKind, oldAmount := r.Kind, r.Amount
	oldRecurring, oldInterval := r.Recurring, r.Interval

	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.Kind != nil {
		r.Kind = *p.Kind
	}
	if p.Recurring != nil {
		r.Recurring = *p.Recurring
	}
	if p.Interval != nil {
		r.Interval = *p.Interval
	}

	if r.Kind != oldKind || !r.Amount.Equal(oldAmount) {
		l.subContribution(oldKind, oldAmount)
		l.addContribution(r.Kind, r.Amount)
		if oldKind == model.Expense || r.IsExpense() {
			l.heap.RebuildFrom(l.store)
		}
	}

	if r.Recurring != oldRecurring || r.Interval != oldInterval {
		l.Reschedule(r)
	}

	l.logger.Debug("updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldID, r.ID,
	)
	return true
}

func (l *Ledger) addContribution(kind model.Kind, amount decimal.Decimal) {
	switch kind {
	case model.Income:
		l.totalIncome = l.totalIncome.Add(amount)
	case model.Expense:
		l.totalExpense = l.totalExpense.Add(amount)
	}
}

func (l *Ledger) subContribution(kind model.Kind, amount decimal.Decimal) {
	l.addContribution(kind, amount.Neg())
}

// FindByID returns the live record with the given id.
func (l *Ledger) FindByID(id int64) (*Record, bool) {
	return l.store.FindByID(id)
}

// All yields live records newest first.
func (l *Ledger) All() iter.Seq[*Record] { return l.store.All() }

func (l *Ledger) Len() int { return l.store.Len() }

// NextID returns the ID the next inserted record will receive.
func (l *Ledger) NextID() int64 { return l.nextID }

// GroupByDate buckets records by date in one pass over All. Groups appear
// in first-seen order and records keep store order within each group.
func (l *Ledger) GroupByDate() []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)
	for r := range l.store.All() {
		key := r.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: r.Date})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// HighestExpense returns the live expense with the largest amount.
func (l *Ledger) HighestExpense() (*Record, bool) {
	return l.heap.PeekMax()
}

// Stats returns the running totals. HighestExpense is zero when there are
// no expenses.
func (l *Ledger) Stats() model.Stats {
	highest, _ := l.heap.MaxAmount()
	return model.Stats{
		Balance:        l.totalIncome.Sub(l.totalExpense),
		TotalIncome:    l.totalIncome,
		TotalExpense:   l.totalExpense,
		HighestExpense: highest,
	}
}

func (l *Ledger) Budgets() *BudgetIndex { return &l.budgets }
func (l *Ledger) Scheduler() *Scheduler { return &l.sched }

// PostDue inserts a plain copy of every recurring record whose occurrence
// is due on or before today, dated at the due date, and moves the
// record's pending entry one interval on. Rounds repeat until nothing is
// due, so a ledger that was idle for several intervals catches up.
// Entries whose source record was deleted or stopped recurring are
// dropped.
func (l *Ledger) PostDue(today model.Date) []*Record {
	var posted []*Record
	for {
		due := l.sched.CollectDue(today)
		if len(due) == 0 {
			return posted
		}
		for _, e := range due {
			src := e.Record
			if src == nil || src.store != l.store || !src.Schedulable() {
				l.logger.Debug("skipping entry for deleted record", log.FieldDue, e.Due.String())
				continue
			}
			r := l.Insert(NewRecord{
				Date:     e.Due,
				Title:    src.Title,
				Amount:   src.Amount,
				Kind:     src.Kind,
				Category: src.Category,
			})
			l.sched.Enqueue(Entry{Record: src, Due: NextDateOn(e.Due, src.Interval, src.Date.Day())})
			posted = append(posted, r)
			l.logger.Info("posted recurring transaction",
				log.FieldOperation, log.OpPost,
				log.FieldID, r.ID,
				"source", src.ID,
				log.FieldDate, r.Date.String(),
			)
		}
	}
}

// reset empties the ledger in place, keeping its logger.
func (l *Ledger) reset() {
	*l = Ledger{
		store:  &Store{},
		nextID: 1,
		logger: l.logger,
	}
}
