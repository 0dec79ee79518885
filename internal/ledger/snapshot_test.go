package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/flowtrack/internal/model"
)

func sampleLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New()
	l.Insert(NewRecord{
		Date: date("2024-12-01"), Title: "Salary", Amount: dec(1000),
		Kind: model.Income, Category: "Work", Recurring: true, Interval: model.Monthly,
	})
	l.Insert(expense("2024-12-02", 300))
	gone := l.Insert(expense("2024-12-03", 999))
	l.Insert(NewRecord{Date: date("2024-12-04"), Title: "Coffee", Amount: dec(4).Div(dec(10)), Kind: model.Expense, Category: "Food"})
	l.Delete(gone)
	l.Budgets().SetBudget("2024-12", dec(2_000_000))
	l.Budgets().Accumulate("2024-12", dec(500_000))
	l.Budgets().SetBudget("2024-11", dec(10))
	return l
}

func recordFields(l *Ledger) []SnapshotRecord {
	var out []SnapshotRecord
	for r := range l.All() {
		out = append(out, r.Snapshot())
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	orig := sampleLedger(t)
	require.NoError(t, orig.Save(path))

	got := New()
	res := got.Load(path)
	require.Equal(t, LoadOK, res.Status, "err: %v", res.Err)
	assert.Equal(t, 3, res.Records)

	assert.Equal(t, recordFields(orig), recordFields(got))
	ws, gs := orig.Stats(), got.Stats()
	assert.True(t, ws.Balance.Equal(gs.Balance))
	assert.True(t, ws.TotalExpense.Equal(gs.TotalExpense))
	assert.True(t, ws.HighestExpense.Equal(gs.HighestExpense))
	assert.Equal(t, orig.NextID(), got.NextID())

	top, ok := got.HighestExpense()
	require.True(t, ok)
	assert.Equal(t, int64(2), top.ID)

	n, ok := got.Budgets().Find("2024-12")
	require.True(t, ok)
	assert.True(t, n.Spent.Equal(dec(500_000)))
	assert.Equal(t, months(orig.Budgets().AllInOrder()), months(got.Budgets().AllInOrder()))

	require.Equal(t, 1, got.Scheduler().Len())
	e, _ := got.Scheduler().PeekFront()
	assert.Equal(t, int64(1), e.Record.ID)
	assert.Equal(t, "2025-01-01", e.Due.String())

	r := got.Insert(expense("2024-12-05", 1))
	assert.Equal(t, int64(5), r.ID, "ids continue after the deleted one")
	requireConsistent(t, got)
}

func TestSnapshotFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleLedger(t).WriteSnapshot(&buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	txns := raw["transactions"].([]any)
	require.Len(t, txns, 3)

	first := txns[0].(map[string]any)
	assert.EqualValues(t, 1, first["id"], "oldest first")
	assert.Equal(t, "monthly", first["recurrence_type"])
	assert.Equal(t, "Income", first["type"])
	assert.EqualValues(t, 1000, first["amount"], "amounts are JSON numbers")

	last := txns[2].(map[string]any)
	assert.Nil(t, last["recurrence_type"])
	assert.EqualValues(t, 0.4, last["amount"])
	assert.EqualValues(t, 5, raw["next_id"])
	assert.Contains(t, buf.String(), `"amount": 0.4`)
}

func TestLoadMissingFile(t *testing.T) {
	l := sampleLedger(t)
	res := l.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, LoadMissing, res.Status)
	assert.NoError(t, res.Err)
	assert.Zero(t, l.Len())
	assert.Equal(t, int64(1), l.NextID())
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		schema  bool
	}{
		{"truncated", `{"transactions": [`, false},
		{"not json", `hello`, false},
		{"bad date", `{"transactions":[{"id":1,"date":"2024-13-01","title":"x","amount":1,"type":"Expense"}],"next_id":2}`, true},
		{"bad type", `{"transactions":[{"id":1,"date":"2024-01-01","title":"x","amount":1,"type":"Gift"}],"next_id":2}`, true},
		{"bad interval", `{"transactions":[{"id":1,"date":"2024-01-01","amount":1,"type":"Income","recurrence_type":"daily"}]}`, true},
		{"duplicate id", `{"transactions":[{"id":1,"date":"2024-01-01","amount":1,"type":"Income"},{"id":1,"date":"2024-01-02","amount":1,"type":"Income"}]}`, true},
		{"bad budget month", `{"transactions":[],"budgets":[{"month":"2024-1","limit":1,"spent":0}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			l := sampleLedger(t)
			res := l.Load(path)
			assert.Equal(t, LoadCorrupt, res.Status)
			require.Error(t, res.Err)
			assert.Equal(t, tt.schema, errors.Is(res.Err, ErrSchemaMismatch), "err: %v", res.Err)
			assert.Zero(t, l.Len(), "ledger reset to empty")
			assert.Zero(t, l.Budgets().Len())

			l.Insert(expense("2024-01-01", 1))
			requireConsistent(t, l)
		})
	}
}

func TestLoadLegacyFileSchedulesFromDates(t *testing.T) {
	legacy := `{
  "transactions": [
    {"id": 1, "date": "2024-01-31", "title": "Rent", "amount": 800, "type": "Expense",
     "category": "Housing", "is_recurring": true, "recurrence_type": "monthly"},
    {"id": 4, "date": "2024-02-02", "title": "Tea", "amount": 3.5, "type": "Expense",
     "category": "Food", "is_recurring": false, "recurrence_type": null}
  ],
  "next_id": 2
}`
	l := New()
	require.NoError(t, l.ReadSnapshot(strings.NewReader(legacy)))

	assert.Equal(t, int64(5), l.NextID(), "next id never below max id + 1")
	assert.Equal(t, []int64{4, 1}, ids(collect(l)))
	require.Equal(t, 1, l.Scheduler().Len())
	e, _ := l.Scheduler().PeekFront()
	assert.Equal(t, "2024-02-29", e.Due.String())
	assert.Zero(t, l.Budgets().Len())
}

func TestRestoreWithoutScheduleResumesSeries(t *testing.T) {
	l, _ := rentSeries(t)
	snap := l.Snapshot()
	snap.Schedule = nil

	got := New()
	require.NoError(t, got.Restore(snap))
	assert.Empty(t, got.PostDue(date("2024-03-15")), "posted occurrences are not posted again")
	entries := got.Scheduler().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-04-01", entries[0].Due.String())
	assert.Len(t, got.PostDue(date("2024-04-15")), 1)
}

func TestLegacyRecurringCopiesJoinOneSeries(t *testing.T) {
	legacy := `{
  "transactions": [
    {"id": 1, "date": "2024-01-01", "title": "Rent", "amount": 800, "type": "Expense",
     "category": "Housing", "is_recurring": true, "recurrence_type": "monthly"},
    {"id": 2, "date": "2024-02-01", "title": "Rent", "amount": 800, "type": "Expense",
     "category": "Housing", "is_recurring": true, "recurrence_type": "monthly"},
    {"id": 3, "date": "2024-03-01", "title": "Rent", "amount": 800, "type": "Expense",
     "category": "Housing", "is_recurring": true, "recurrence_type": "monthly"}
  ],
  "next_id": 4
}`
	l := New()
	require.NoError(t, l.ReadSnapshot(strings.NewReader(legacy)))

	entries := l.Scheduler().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Record.ID)
	assert.Equal(t, "2024-04-01", entries[0].Due.String())
	assert.Empty(t, l.PostDue(date("2024-03-31")))
}

func TestRestoreDropsUnknownScheduleEntries(t *testing.T) {
	snap := Snapshot{
		Transactions: []SnapshotRecord{
			{ID: 1, Date: "2024-01-01", Amount: "5", Type: "Expense", IsRecurring: true, RecurrenceType: ptr("weekly")},
		},
		NextID:   2,
		Schedule: []SnapshotEntry{{ID: 7, Due: "2024-01-08"}, {ID: 1, Due: "2024-01-15"}},
	}
	l := New()
	require.NoError(t, l.Restore(snap))
	entries := l.Scheduler().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-15", entries[0].Due.String(), "restored as saved, not recomputed")
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "ledger.json")
	l := sampleLedger(t)
	require.NoError(t, l.Save(path))
	require.NoError(t, l.Save(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger.json", entries[0].Name())
}

type failingBackend struct{ err error }

func (f failingBackend) SaveSnapshot(Snapshot) error     { return f.err }
func (f failingBackend) LoadSnapshot() (Snapshot, error) { return Snapshot{}, f.err }

func TestBackendErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	l := sampleLedger(t)
	err := l.SaveTo(failingBackend{boom})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, l.Len(), "failed save leaves ledger intact")

	res := l.LoadFrom(failingBackend{boom})
	assert.Equal(t, LoadCorrupt, res.Status)
	assert.ErrorIs(t, res.Err, boom)

	res = l.LoadFrom(failingBackend{ErrNoSnapshot})
	assert.Equal(t, LoadMissing, res.Status)
}

func ptr[T any](v T) *T { return &v }

func TestJSONFileBackupMovesFile(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, "ledger.json"))
	require.NoError(t, os.WriteFile(f.Path(), []byte("{nope"), 0o644))

	dst := f.Path() + ".corrupt-1"
	require.NoError(t, f.Backup(dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "{nope", string(got))
	_, err = f.LoadSnapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
