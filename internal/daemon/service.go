// Package daemon serves the ledger over HTTP and posts recurring
// transactions as they fall due.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	NearLimit    float64
	Where        string // backend location, reported in status

	SaveRetries      uint64
	SaveRetryInitial time.Duration

	// Today returns the date used to decide what is due. Defaults to
	// model.Today.
	Today func() model.Date
}

// Snapshot is a compact ledger state for status and event payloads.
// Amounts are decimal strings.
type Snapshot struct {
	At             time.Time `json:"at"`
	Transactions   int       `json:"transactions"`
	Balance        string    `json:"balance"`
	TotalIncome    string    `json:"total_income"`
	TotalExpense   string    `json:"total_expense"`
	HighestExpense string    `json:"highest_expense"`
	Pending        int       `json:"pending_recurring"`
	Budgets        int       `json:"budgets"`
	OverBudget     int       `json:"over_budget"`
}

// Event is emitted on startup and whenever recurring transactions post.
type Event struct {
	ID        int64                   `json:"id"`
	Type      string                  `json:"type"`
	Timestamp time.Time               `json:"timestamp"`
	Snapshot  Snapshot                `json:"snapshot"`
	Posted    []ledger.SnapshotRecord `json:"posted,omitempty"`
}

// Event types.
const (
	EventSnapshot        = "snapshot"
	EventRecurringPosted = "recurring_posted"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Where           string    `json:"where,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API. Every ledger access
// holds mu, which makes the single-actor ledger safe to share with HTTP
// handlers.
type Service struct {
	cfg     Config
	ledger  *ledger.Ledger
	backend ledger.Backend
	logger  *log.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service for l, persisting to backend.
func New(cfg Config, l *ledger.Ledger, backend ledger.Backend, logger *log.Logger) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.NearLimit <= 0 {
		cfg.NearLimit = ledger.DefaultNearLimit
	}
	if cfg.SaveRetries == 0 {
		cfg.SaveRetries = 4
	}
	if cfg.SaveRetryInitial <= 0 {
		cfg.SaveRetryInitial = 500 * time.Millisecond
	}
	if cfg.Today == nil {
		cfg.Today = model.Today
	}
	if logger == nil {
		logger = log.Discard()
	}

	return &Service{
		cfg:       cfg,
		ledger:    l,
		backend:   backend,
		logger:    logger.WithComponent(log.ComponentDaemon),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /v1/transactions", s.handleTransactions)
	mux.HandleFunc("GET /v1/budgets", s.handleBudgets)
	mux.HandleFunc("GET /v1/recurring", s.handleRecurring)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval.String())

	s.publishEvent(EventSnapshot, nil)
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce posts everything due today and saves when anything posted.
func (s *Service) pollOnce(ctx context.Context) {
	today := s.cfg.Today()

	s.mu.Lock()
	posted := s.ledger.PostDue(today)
	for _, r := range posted {
		pipeline.TrackExpense(s.ledger.Budgets(), r)
	}
	var (
		snap    ledger.Snapshot
		records []ledger.SnapshotRecord
	)
	if len(posted) > 0 {
		snap = s.ledger.Snapshot()
		records = make([]ledger.SnapshotRecord, 0, len(posted))
		for _, r := range posted {
			records = append(records, r.Snapshot())
		}
	}
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()

	if len(posted) == 0 {
		return
	}

	s.logger.InfoContext(ctx, "posted recurring transactions", log.FieldCount, len(posted))
	err := s.saveWithRetry(ctx, snap)

	s.mu.Lock()
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	s.publishEvent(EventRecurringPosted, records)
}

func (s *Service) saveWithRetry(ctx context.Context, snap ledger.Snapshot) error {
	if s.backend == nil {
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.SaveRetryInitial
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.SaveRetries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		return s.backend.SaveSnapshot(snap)
	}, policy)
	if err != nil {
		s.logger.ErrorContext(ctx, "save failed", log.FieldOperation, log.OpSave, "attempts", attempt, log.FieldError, err)
		return fmt.Errorf("saving after %d attempts: %w", attempt, err)
	}
	if attempt > 1 {
		s.logger.WarnContext(ctx, "save succeeded after retry", "attempts", attempt)
	}
	return nil
}

// summaryLocked builds a Snapshot. Callers hold mu.
func (s *Service) summaryLocked(at time.Time) Snapshot {
	st := s.ledger.Stats()
	snap := Snapshot{
		At:             at,
		Transactions:   s.ledger.Len(),
		Balance:        st.Balance.String(),
		TotalIncome:    st.TotalIncome.String(),
		TotalExpense:   st.TotalExpense.String(),
		HighestExpense: st.HighestExpense.String(),
		Pending:        s.ledger.Scheduler().Len(),
		Budgets:        s.ledger.Budgets().Len(),
	}
	for _, n := range s.ledger.Budgets().AllInOrder() {
		if n.IsOverBudget() {
			snap.OverBudget++
		}
	}
	return snap
}

func (s *Service) publishEvent(typ string, posted []ledger.SnapshotRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: now,
		Snapshot:  s.summaryLocked(now),
		Posted:    posted,
	}
	s.appendEventLocked(ev)
}

func (s *Service) appendEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Where:           s.cfg.Where,
		Summary:         s.summaryLocked(time.Now()),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	snap := s.summaryLocked(time.Now())
	s.mu.RUnlock()
	writeJSON(w, snap)
}

// handleTransactions lists records newest first. Query parameters: month
// ("YYYY-MM"), type ("income"/"expense") and limit.
func (s *Service) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var kind model.Kind
	if t := q.Get("type"); t != "" {
		k, err := model.ParseKind(t)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = k
	}
	if m := q.Get("month"); m != "" {
		if _, err := model.ParseMonth(m); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	limit := 0
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	s.mu.RLock()
	recs := pipeline.Collect(s.ledger)
	recs = pipeline.FilterByMonth(recs, q.Get("month"))
	recs = pipeline.FilterByKind(recs, kind)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]ledger.SnapshotRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Snapshot())
	}
	s.mu.RUnlock()

	writeJSON(w, out)
}

// BudgetStatus is one row of /v1/budgets. Amounts are decimal strings.
type BudgetStatus struct {
	Month     string  `json:"month"`
	Limit     string  `json:"limit"`
	Spent     string  `json:"spent"`
	Remaining string  `json:"remaining"`
	Percent   float64 `json:"percent"`
	State     string  `json:"state"`
}

func (s *Service) handleBudgets(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")

	s.mu.RLock()
	nodes := s.ledger.Budgets().AllInOrder()
	if from != "" || to != "" {
		if to == "" {
			to = "9999-12"
		}
		nodes = s.ledger.Budgets().Range(from, to)
	}
	rows := pipeline.BudgetReport(nodes, s.cfg.NearLimit)
	s.mu.RUnlock()

	out := make([]BudgetStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, BudgetStatus{
			Month:     row.Month,
			Limit:     row.Limit.String(),
			Spent:     row.Spent.String(),
			Remaining: row.Remaining.String(),
			Percent:   row.Percent,
			State:     string(row.State),
		})
	}
	writeJSON(w, out)
}

// Pending is one queued recurring occurrence in /v1/recurring.
type Pending struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Due   string `json:"due"`
}

func (s *Service) handleRecurring(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	entries := s.ledger.Scheduler().Entries()
	out := make([]Pending, 0, len(entries))
	for _, e := range entries {
		if !e.Record.Live() {
			continue
		}
		out = append(out, Pending{ID: e.Record.ID, Title: e.Record.Title, Due: e.Due.String()})
	}
	s.mu.RUnlock()
	writeJSON(w, out)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
