package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theirongolddev/flowtrack/internal/config"
	"github.com/theirongolddev/flowtrack/internal/ledger"
	"github.com/theirongolddev/flowtrack/internal/log"
	"github.com/theirongolddev/flowtrack/internal/store"
)

// Book is a ledger paired with the backend it was loaded from.
type Book struct {
	Ledger  *ledger.Ledger
	Load    ledger.LoadResult
	Backend string // "json" or "sqlite"
	Where   string // file or database path

	// Backup is where unreadable content was set aside by the first save
	// after a corrupt load.
	Backup string

	backend ledger.Backend
	closeFn func() error
	logger  *log.Logger

	mu   sync.Mutex
	keep bool
}

// ErrNoBackup is returned by Save when a corrupt snapshot cannot be set
// aside, so saving would destroy it.
var ErrNoBackup = errors.New("unreadable ledger could not be backed up")

type backuper interface {
	Backup(dst string) error
}

// Open builds the backend selected by cfg and loads the ledger from it.
// A missing or corrupt snapshot is not an error: the ledger starts empty
// and Load says why.
func Open(cfg config.Config, logger *log.Logger) (*Book, error) {
	b := &Book{
		Ledger:  ledger.New(ledger.WithLogger(logger)),
		Backend: cfg.Storage.Backend,
		closeFn: func() error { return nil },
		logger:  logger,
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		b.Where = cfg.SQLitePath()
		db, err := store.Open(b.Where)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", b.Where, err)
		}
		b.backend = db
		b.closeFn = db.Close
	case config.BackendJSON, "":
		b.Backend = config.BackendJSON
		b.Where = cfg.DataFilePath()
		b.backend = ledger.NewJSONFile(b.Where)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	b.Load = b.Ledger.LoadFrom(b.backend)
	if b.Load.Status == ledger.LoadCorrupt {
		b.keep = true
		logger.Warn("ledger snapshot could not be read, starting empty",
			log.FieldBackend, b.Backend,
			log.FieldPath, b.Where,
			log.FieldError, b.Load.Err,
		)
	}
	return b, nil
}

// Save writes the ledger back to its backend.
func (b *Book) Save() error {
	return b.Ledger.SaveTo(b)
}

// SaveSnapshot implements ledger.Backend. After a corrupt load the
// unreadable content is first set aside next to it as
// <path>.corrupt-<timestamp>, and nothing is written if that fails.
func (b *Book) SaveSnapshot(snap ledger.Snapshot) error {
	if err := b.setAside(time.Now()); err != nil {
		return err
	}
	return b.backend.SaveSnapshot(snap)
}

// LoadSnapshot implements ledger.Backend.
func (b *Book) LoadSnapshot() (ledger.Snapshot, error) {
	return b.backend.LoadSnapshot()
}

func (b *Book) setAside(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.keep {
		return nil
	}
	bk, ok := b.backend.(backuper)
	if !ok {
		return fmt.Errorf("%w: %s backend cannot copy %s", ErrNoBackup, b.Backend, b.Where)
	}
	dst := fmt.Sprintf("%s.corrupt-%s", b.Where, now.Format("20060102-150405"))
	if err := bk.Backup(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrNoBackup, err)
	}
	b.keep = false
	b.Backup = dst
	b.logger.Warn("unreadable ledger set aside",
		log.FieldOperation, log.OpSave,
		log.FieldPath, dst,
	)
	return nil
}

// Store returns the backend saves should go through. It sets corrupt
// content aside like Save does.
func (b *Book) Store() ledger.Backend {
	return b
}

// Close releases the backend.
func (b *Book) Close() error {
	return b.closeFn()
}
