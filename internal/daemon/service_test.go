package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/model"
)

type memBackend struct {
	mu    sync.Mutex
	fails int
	saves int
	last  ledger.Snapshot
}

func (m *memBackend) SaveSnapshot(s ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.fails > 0 {
		m.fails--
		return errors.New("transient")
	}
	m.last = s
	return nil
}

func (m *memBackend) LoadSnapshot() (ledger.Snapshot, error) {
	return ledger.Snapshot{}, ledger.ErrNoSnapshot
}

func newTestService(t *testing.T, backend ledger.Backend, today string) (*Service, *ledger.Ledger) {
	t.Helper()
	l := ledger.New()
	l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-01-31"), Title: "Rent", Amount: decimal.NewFromInt(800),
		Kind: model.Expense, Category: "Housing", Recurring: true, Interval: model.Monthly,
	})
	l.Insert(ledger.NewRecord{
		Date: model.MustParseDate("2024-02-01"), Title: "Salary", Amount: decimal.NewFromInt(3000),
		Kind: model.Income, Category: "Work",
	})
	l.Budgets().SetBudget("2024-02", decimal.NewFromInt(500))

	s := New(Config{
		Interval:         10 * time.Second,
		EventsBuffer:     10,
		SaveRetryInitial: time.Millisecond,
		Today:            func() model.Date { return model.MustParseDate(today) },
	}, l, backend, nil)
	return s, l
}

func TestPollPostsDueAndSaves(t *testing.T) {
	backend := &memBackend{}
	s, l := newTestService(t, backend, "2024-03-01")

	s.pollOnce(context.Background())

	if l.Len() != 3 {
		t.Fatalf("ledger len = %d, want 3", l.Len())
	}
	if backend.saves != 1 || len(backend.last.Transactions) != 3 {
		t.Fatalf("saves = %d, saved %d records", backend.saves, len(backend.last.Transactions))
	}
	n, _ := l.Budgets().Find("2024-02")
	if !n.Spent.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("posted expense not tracked: spent = %s", n.Spent)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 1 || s.events[0].Type != EventRecurringPosted {
		t.Fatalf("events = %+v", s.events)
	}
	ev := s.events[0]
	if len(ev.Posted) != 1 || ev.Posted[0].Date != "2024-02-29" {
		t.Fatalf("posted = %+v", ev.Posted)
	}
	if ev.Snapshot.OverBudget != 1 {
		t.Fatalf("over budget = %d, want 1", ev.Snapshot.OverBudget)
	}
}

func TestPollNothingDue(t *testing.T) {
	backend := &memBackend{}
	s, l := newTestService(t, backend, "2024-02-15")
	s.pollOnce(context.Background())
	if l.Len() != 2 || backend.saves != 0 {
		t.Fatalf("len %d saves %d", l.Len(), backend.saves)
	}
	if st := s.snapshotStatus(); st.PollCount != 1 || st.EventCount != 0 {
		t.Fatalf("status = %+v", st)
	}
}

func TestSaveRetries(t *testing.T) {
	backend := &memBackend{fails: 2}
	s, _ := newTestService(t, backend, "2024-03-01")
	s.pollOnce(context.Background())

	if backend.saves != 3 {
		t.Fatalf("saves = %d, want 3", backend.saves)
	}
	if st := s.snapshotStatus(); st.LastError != "" {
		t.Fatalf("last error = %q", st.LastError)
	}
}

func TestSaveGivesUp(t *testing.T) {
	backend := &memBackend{fails: 100}
	s, _ := newTestService(t, backend, "2024-03-01")
	s.cfg.SaveRetries = 2
	s.pollOnce(context.Background())

	if backend.saves != 3 {
		t.Fatalf("saves = %d, want 3", backend.saves)
	}
	if st := s.snapshotStatus(); st.LastError == "" {
		t.Fatal("expected last error to be recorded")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(t, nil, "2024-01-01")
	s.cfg.EventsBuffer = 2

	s.publishEvent(EventSnapshot, nil)
	s.publishEvent(EventSnapshot, nil)
	s.publishEvent(EventSnapshot, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHTTPHandlers(t *testing.T) {
	s, _ := newTestService(t, nil, "2024-02-15")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(path string, v any) int {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		if v != nil && resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				t.Fatalf("decode %s: %v", path, err)
			}
		}
		return resp.StatusCode
	}

	if code := get("/healthz", nil); code != http.StatusOK {
		t.Fatalf("healthz = %d", code)
	}

	var stats Snapshot
	get("/v1/stats", &stats)
	if stats.Transactions != 2 || stats.Balance != "2200" || stats.Pending != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	var txns []ledger.SnapshotRecord
	get("/v1/transactions?type=expense", &txns)
	if len(txns) != 1 || txns[0].Title != "Rent" {
		t.Fatalf("transactions = %+v", txns)
	}
	get("/v1/transactions?limit=1", &txns)
	if len(txns) != 1 || txns[0].Title != "Salary" {
		t.Fatalf("limited transactions = %+v", txns)
	}
	if code := get("/v1/transactions?month=2024-2", nil); code != http.StatusBadRequest {
		t.Fatalf("bad month = %d", code)
	}

	var budgets []BudgetStatus
	get("/v1/budgets?from=2024-01&to=2024-03", &budgets)
	if len(budgets) != 1 || budgets[0].Month != "2024-02" || budgets[0].State != "ok" {
		t.Fatalf("budgets = %+v", budgets)
	}

	var pending []Pending
	get("/v1/recurring", &pending)
	if len(pending) != 1 || pending[0].Due != "2024-02-29" {
		t.Fatalf("recurring = %+v", pending)
	}

	var status Status
	get("/v1/status", &status)
	if status.PollIntervalSec != 10 {
		t.Fatalf("status = %+v", status)
	}
}
