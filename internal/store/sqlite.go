// Package store provides a SQLite-backed home for ledger snapshots.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/theirongolddev/flowtrack/internal/ledger"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores one ledger snapshot across a few tables. Each save
// replaces the previous content inside a single SQL transaction.
type SQLite struct {
	db *sql.DB
}

var _ ledger.Backend = (*SQLite)(nil)

// Open opens or creates the database at the given path.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Backup writes a consistent copy of the database to dst, which must not
// exist yet.
func (s *SQLite) Backup(dst string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("copying database to %s: %w", dst, err)
	}
	return nil
}

// SaveSnapshot replaces the stored snapshot with snap.
func (s *SQLite) SaveSnapshot(snap ledger.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"schedule", "budgets", "transactions", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, r := range snap.Transactions {
		isRecurring := 0
		if r.IsRecurring {
			isRecurring = 1
		}
		_, err = tx.Exec(`INSERT INTO transactions
			(id, seq, date, title, amount, type, category, is_recurring, recurrence_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.Date, r.Title, r.Amount.String(), r.Type, r.Category, isRecurring, r.RecurrenceType,
		)
		if err != nil {
			return fmt.Errorf("inserting transaction %d: %w", r.ID, err)
		}
	}

	for i, b := range snap.Budgets {
		_, err = tx.Exec(`INSERT INTO budgets (month, seq, limit_amount, spent_amount)
			VALUES (?, ?, ?, ?)`, b.Month, i, b.Limit.String(), b.Spent.String())
		if err != nil {
			return fmt.Errorf("inserting budget %s: %w", b.Month, err)
		}
	}

	for i, e := range snap.Schedule {
		_, err = tx.Exec(`INSERT INTO schedule (seq, transaction_id, due) VALUES (?, ?, ?)`, i, e.ID, e.Due)
		if err != nil {
			return fmt.Errorf("inserting schedule entry %d: %w", e.ID, err)
		}
	}

	meta := map[string]string{
		"next_id":  strconv.FormatInt(snap.NextID, 10),
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored snapshot. It returns ledger.ErrNoSnapshot
// when nothing has been saved yet.
func (s *SQLite) LoadSnapshot() (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	var nextID string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'next_id'`).Scan(&nextID)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ledger.ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("reading meta: %w", err)
	}
	if snap.NextID, err = strconv.ParseInt(nextID, 10, 64); err != nil {
		return snap, fmt.Errorf("%w: next_id %q", ledger.ErrSchemaMismatch, nextID)
	}

	if snap.Transactions, err = s.loadTransactions(); err != nil {
		return snap, err
	}
	if snap.Budgets, err = s.loadBudgets(); err != nil {
		return snap, err
	}
	if snap.Schedule, err = s.loadSchedule(); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *SQLite) loadTransactions() ([]ledger.SnapshotRecord, error) {
	rows, err := s.db.Query(`SELECT id, date, title, amount, type, category, is_recurring, recurrence_type
		FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]ledger.SnapshotRecord, 0)
	for rows.Next() {
		var r ledger.SnapshotRecord
		var amount string
		var isRecurring int
		var recurrence sql.NullString
		if err := rows.Scan(&r.ID, &r.Date, &r.Title, &amount, &r.Type, &r.Category, &isRecurring, &recurrence); err != nil {
			return nil, err
		}
		r.Amount = json.Number(amount)
		r.IsRecurring = isRecurring != 0
		if recurrence.Valid {
			r.RecurrenceType = &recurrence.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) loadBudgets() ([]ledger.SnapshotBudget, error) {
	rows, err := s.db.Query(`SELECT month, limit_amount, spent_amount FROM budgets ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]ledger.SnapshotBudget, 0)
	for rows.Next() {
		var b ledger.SnapshotBudget
		var limit, spent string
		if err := rows.Scan(&b.Month, &limit, &spent); err != nil {
			return nil, err
		}
		b.Limit, b.Spent = json.Number(limit), json.Number(spent)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLite) loadSchedule() ([]ledger.SnapshotEntry, error) {
	rows, err := s.db.Query(`SELECT transaction_id, due FROM schedule ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying schedule: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]ledger.SnapshotEntry, 0)
	for rows.Next() {
		var e ledger.SnapshotEntry
		if err := rows.Scan(&e.ID, &e.Due); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SavedAt returns when the snapshot was last written.
func (s *SQLite) SavedAt() (time.Time, bool) {
	var v string
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&v); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
