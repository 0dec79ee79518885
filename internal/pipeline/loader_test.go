package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/model"
	"github.com/theirongolddev/flowtrack/internal/store"
)

func TestOpenBackends(t *testing.T) {
	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultConfig()
			cfg.Storage.Backend = backend
			cfg.General.DataFile = filepath.Join(dir, "ledger.json")
			cfg.Storage.SQLitePath = filepath.Join(dir, "ledger.db")

			book, err := Open(cfg, log.Discard())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if book.Load.Status != ledger.LoadMissing {
				t.Fatalf("fresh status = %s, want missing", book.Load.Status)
			}
			book.Ledger.Insert(ledger.NewRecord{
				Date: model.MustParseDate("2024-01-01"), Title: "Tea",
				Amount: decimal.NewFromInt(3), Kind: model.Expense, Category: "Food",
			})
			if err := book.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := book.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			again, err := Open(cfg, log.Discard())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer again.Close()
			if again.Load.Status != ledger.LoadOK || again.Ledger.Len() != 1 {
				t.Fatalf("reopened status %s with %d records", again.Load.Status, again.Ledger.Len())
			}
		})
	}
}

func TestOpenCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.General.DataFile = path

	book, err := Open(cfg, log.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if book.Load.Status != ledger.LoadCorrupt || book.Load.Err == nil {
		t.Fatalf("status = %s err = %v", book.Load.Status, book.Load.Err)
	}
	if book.Ledger.Len() != 0 {
		t.Fatalf("expected empty ledger")
	}
}

func TestSaveAfterCorruptLoadKeepsOriginal(t *testing.T) {
	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultConfig()
			cfg.Storage.Backend = backend
			cfg.General.DataFile = filepath.Join(dir, "ledger.json")
			cfg.Storage.SQLitePath = filepath.Join(dir, "ledger.db")

			var original []byte
			if backend == config.BackendJSON {
				original = []byte(`{"transactions": [{"id": 1, "date": "2024-13-01", "title": "Rent",
  "amount": 800, "type": "Expense", "category": "", "is_recurring": false}], "next_id": 2}`)
				if err := os.WriteFile(cfg.General.DataFile, original, 0o644); err != nil {
					t.Fatal(err)
				}
			} else {
				seedCorruptDB(t, cfg.Storage.SQLitePath)
			}

			book, err := Open(cfg, log.Discard())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer book.Close()
			if book.Load.Status != ledger.LoadCorrupt {
				t.Fatalf("status = %s, want corrupt", book.Load.Status)
			}

			book.Ledger.Insert(ledger.NewRecord{
				Date:   model.MustParseDate("2024-12-01"),
				Title:  "Coffee",
				Amount: decimal.NewFromInt(3),
				Kind:   model.Expense,
			})
			if err := book.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if book.Backup == "" || !strings.HasPrefix(book.Backup, book.Where+".corrupt-") {
				t.Fatalf("backup = %q", book.Backup)
			}
			if _, err := os.Stat(book.Backup); err != nil {
				t.Fatalf("backup missing: %v", err)
			}
			if backend == config.BackendJSON {
				got, err := os.ReadFile(book.Backup)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(got, original) {
					t.Fatalf("backup content changed")
				}
			}

			first := book.Backup
			if err := book.Save(); err != nil {
				t.Fatalf("second Save: %v", err)
			}
			if book.Backup != first {
				t.Fatalf("second save made another backup: %q", book.Backup)
			}
		})
	}
}

// seedCorruptDB stores a snapshot whose only transaction has an invalid
// date.
func seedCorruptDB(t *testing.T, path string) {
	t.Helper()
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	snap := ledger.Snapshot{
		Transactions: []ledger.SnapshotRecord{{ID: 1, Date: "2024-13-01", Title: "Rent", Amount: "800", Type: "Expense"}},
		NextID:       2,
	}
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatal(err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "mongo"
	if _, err := Open(cfg, log.Discard()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
