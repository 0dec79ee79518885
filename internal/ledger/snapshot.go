package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
)

var (
	// ErrSchemaMismatch is returned when a snapshot decodes but its content
	// cannot describe a valid ledger.
	ErrSchemaMismatch = errors.New("snapshot schema mismatch")

	// ErrNoSnapshot is returned by a Backend that has nothing saved yet.
	ErrNoSnapshot = errors.New("no snapshot")
)

// Snapshot is the persisted form of a ledger. Transactions run oldest to
// newest. Budgets and Schedule are nil when absent from the source.
type Snapshot struct {
	Transactions []SnapshotRecord `json:"transactions"`
	NextID       int64            `json:"next_id"`
	Budgets      []SnapshotBudget `json:"budgets"`
	Schedule     []SnapshotEntry  `json:"schedule"`
}

type SnapshotRecord struct {
	ID             int64       `json:"id"`
	Date           string      `json:"date"`
	Title          string      `json:"title"`
	Amount         json.Number `json:"amount"`
	Type           string      `json:"type"`
	Category       string      `json:"category"`
	IsRecurring    bool        `json:"is_recurring"`
	RecurrenceType *string     `json:"recurrence_type"`
}

type SnapshotBudget struct {
	Month string      `json:"month"`
	Limit json.Number `json:"limit"`
	Spent json.Number `json:"spent"`
}

type SnapshotEntry struct {
	ID  int64  `json:"id"`
	Due string `json:"due"`
}

// Backend persists whole snapshots. LoadSnapshot returns ErrNoSnapshot
// when nothing has been saved.
type Backend interface {
	SaveSnapshot(Snapshot) error
	LoadSnapshot() (Snapshot, error)
}

// LoadStatus classifies the outcome of a load.
type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadMissing
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// LoadResult reports how a load went. On LoadMissing and LoadCorrupt the
// ledger is left empty and usable.
type LoadResult struct {
	Status  LoadStatus
	Records int
	Err     error
}

// Snapshot captures the ledger. Budgets are emitted in pre-order so a
// restore rebuilds the same tree shape.
func (l *Ledger) Snapshot() Snapshot {
	snap := Snapshot{
		Transactions: make([]SnapshotRecord, 0, l.store.Len()),
		NextID:       l.nextID,
		Budgets:      make([]SnapshotBudget, 0, l.budgets.Len()),
		Schedule:     make([]SnapshotEntry, 0, l.sched.Len()),
	}
	for r := range l.store.Backward() {
		snap.Transactions = append(snap.Transactions, r.Snapshot())
	}
	for _, n := range l.budgets.preOrder() {
		snap.Budgets = append(snap.Budgets, SnapshotBudget{
			Month: n.Month,
			Limit: json.Number(n.Limit.String()),
			Spent: json.Number(n.Spent.String()),
		})
	}
	for _, e := range l.sched.queue {
		if e.Record == nil || e.Record.store != l.store {
			continue
		}
		snap.Schedule = append(snap.Schedule, SnapshotEntry{ID: e.Record.ID, Due: e.Due.String()})
	}
	return snap
}

// Snapshot returns r in its persisted shape.
func (r *Record) Snapshot() SnapshotRecord {
	sr := SnapshotRecord{
		ID:          r.ID,
		Date:        r.Date.String(),
		Title:       r.Title,
		Amount:      json.Number(r.Amount.String()),
		Type:        r.Kind.String(),
		Category:    r.Category,
		IsRecurring: r.Recurring,
	}
	if r.Interval != model.None {
		iv := r.Interval.String()
		sr.RecurrenceType = &iv
	}
	return sr
}

// Restore replaces the ledger's content with snap. Records are replayed
// oldest first through the insert path, so the store, heap and totals come
// out as if the inserts had happened in this session. Budgets and the
// schedule are restored as saved. If snap is invalid the ledger is left
// empty and the error wraps ErrSchemaMismatch.
func (l *Ledger) Restore(snap Snapshot) error {
	fresh := &Ledger{store: &Store{}, nextID: 1, logger: l.logger}
	if err := fresh.restore(snap); err != nil {
		l.reset()
		return err
	}
	*l = *fresh
	return nil
}

func (l *Ledger) restore(snap Snapshot) error {
	byID := make(map[int64]*Record, len(snap.Transactions))
	var maxID int64
	var recurring []*Record

	for i, sr := range snap.Transactions {
		r, err := sr.toRecord()
		if err != nil {
			return fmt.Errorf("%w: transaction %d: %v", ErrSchemaMismatch, i, err)
		}
		if _, dup := byID[r.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrSchemaMismatch, r.ID)
		}
		byID[r.ID] = r
		maxID = max(maxID, r.ID)
		l.link(r, false)
		if r.Schedulable() {
			recurring = append(recurring, r)
		}
	}
	l.nextID = max(snap.NextID, maxID+1, 1)

	// Files without a schedule resume each series after its latest
	// posted occurrence.
	if snap.Schedule == nil {
		l.Reschedule(recurring...)
	}

	for _, sb := range snap.Budgets {
		month, err := model.ParseMonth(sb.Month)
		if err != nil {
			return fmt.Errorf("%w: budget: %v", ErrSchemaMismatch, err)
		}
		limit, err := parseAmount(sb.Limit)
		if err != nil {
			return fmt.Errorf("%w: budget %s limit: %v", ErrSchemaMismatch, month, err)
		}
		spent, err := parseAmount(sb.Spent)
		if err != nil {
			return fmt.Errorf("%w: budget %s spent: %v", ErrSchemaMismatch, month, err)
		}
		l.budgets.Restore(month, limit, spent)
	}

	for _, se := range snap.Schedule {
		r, ok := byID[se.ID]
		if !ok {
			l.logger.Warn("dropping schedule entry for unknown transaction", log.FieldID, se.ID)
			continue
		}
		due, err := model.ParseDate(se.Due)
		if err != nil {
			return fmt.Errorf("%w: schedule entry %d: %v", ErrSchemaMismatch, se.ID, err)
		}
		l.sched.Enqueue(Entry{Record: r, Due: due})
	}
	return nil
}

func (sr SnapshotRecord) toRecord() (*Record, error) {
	if sr.ID <= 0 {
		return nil, fmt.Errorf("id %d is not positive", sr.ID)
	}
	date, err := model.ParseDate(sr.Date)
	if err != nil {
		return nil, err
	}
	kind, err := model.ParseKind(sr.Type)
	if err != nil {
		return nil, err
	}
	interval := model.None
	if sr.RecurrenceType != nil {
		if interval, err = model.ParseInterval(*sr.RecurrenceType); err != nil {
			return nil, err
		}
	}
	amount, err := parseAmount(sr.Amount)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:        sr.ID,
		Date:      date,
		Title:     sr.Title,
		Amount:    amount,
		Kind:      kind,
		Category:  sr.Category,
		Recurring: sr.IsRecurring,
		Interval:  interval,
	}, nil
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %v", string(n), err)
	}
	return d, nil
}

// EncodeSnapshot writes snap as indented JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads one JSON snapshot from r.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// WriteSnapshot writes the ledger as JSON to w.
func (l *Ledger) WriteSnapshot(w io.Writer) error {
	return EncodeSnapshot(w, l.Snapshot())
}

// ReadSnapshot replaces the ledger's content with the JSON snapshot in r.
func (l *Ledger) ReadSnapshot(r io.Reader) error {
	snap, err := DecodeSnapshot(r)
	if err != nil {
		l.reset()
		return err
	}
	return l.Restore(snap)
}

// SaveTo writes the ledger to b.
func (l *Ledger) SaveTo(b Backend) error {
	if err := b.SaveSnapshot(l.Snapshot()); err != nil {
		l.logger.Error("save failed", log.FieldOperation, log.OpSave, log.FieldError, err)
		return fmt.Errorf("saving ledger: %w", err)
	}
	l.logger.Debug("saved", log.FieldOperation, log.OpSave, log.FieldCount, l.Len())
	return nil
}

// LoadFrom replaces the ledger's content with what b holds. It never
// fails hard: a missing or unreadable snapshot leaves an empty ledger and
// is reported through the result.
func (l *Ledger) LoadFrom(b Backend) LoadResult {
	snap, err := b.LoadSnapshot()
	switch {
	case errors.Is(err, ErrNoSnapshot):
		l.reset()
		return LoadResult{Status: LoadMissing}
	case err != nil:
		l.reset()
		l.logger.Warn("snapshot unreadable, starting empty", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return LoadResult{Status: LoadCorrupt, Err: err}
	}

	if err := l.Restore(snap); err != nil {
		l.logger.Warn("snapshot rejected, starting empty", log.FieldOperation, log.OpLoad, log.FieldError, err)
		return LoadResult{Status: LoadCorrupt, Err: err}
	}
	l.logger.Debug("loaded", log.FieldOperation, log.OpLoad, log.FieldCount, l.Len())
	return LoadResult{Status: LoadOK, Records: l.Len()}
}

// Save writes the ledger to a JSON file at path.
func (l *Ledger) Save(path string) error {
	return l.SaveTo(NewJSONFile(path))
}

// Load reads the ledger from a JSON file at path.
func (l *Ledger) Load(path string) LoadResult {
	return l.LoadFrom(NewJSONFile(path))
}
