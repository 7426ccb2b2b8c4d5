package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/docflow/internal/logging"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// dbFileName is the SQLite file created inside DataDir on Attach.
const dbFileName = "docflow.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	now    func() time.Time
	logger *log.Logger

	// Sync strategy state.
	syncStrategy  string         // effective sync strategy: immediate, on_close, batch
	batchSize     int            // number of writes before batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // queue of writes pending JSONL persist
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite represents a deferred JSONL write operation.
// Used by on_close and batch sync strategies.
type pendingWrite struct {
	tableName string       // links or documents
	operation string       // "save" or "delete"
	persist   func() error // function to execute the JSONL write
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithLogger sets the logger for load warnings and background flush errors.
func WithLogger(l *log.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrDiscard(b.logger)
	return b
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, recreates the SQLite database, and
// loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	// A single connection serializes writers and keeps the
	// check-then-insert in CreateLink atomic.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, dataDir, b.logger); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config

	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.logger.Debug("store attached", "data_dir", dataDir, "sync", b.syncStrategy)
	return nil
}

// Detach releases all resources held by the backend.
// For on_close and batch sync strategies, flushes all pending writes before
// closing. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// DataDir returns the data directory of the attached backend.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// timestamp returns the current time in the stored layout.
func (b *Backend) timestamp() (time.Time, string) {
	now := b.now().UTC()
	return now, now.Format(timeLayout)
}

// generateUUID generates a new UUID v7 for link IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// commitAndPersist commits tx and writes tableName to its JSONL file, now or
// later depending on the sync strategy. Under the immediate strategy the
// snapshot is taken inside tx and written before the commit, so a failed
// write rolls the change back and SQLite never holds rows the JSONL file
// lacks. The caller must hold b.mu and must defer tx.Rollback.
func (b *Backend) commitAndPersist(tx *sql.Tx, tableName, operation string) error {
	file := jsonlFiles[tableName].file
	if !b.shouldPersistImmediately() {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing %s: %w", tableName, err)
		}
		b.queueWrite(tableName, operation, func() error {
			return persistTableJSONL(b.db, b.config.DataDir, tableName)
		})
		return nil
	}

	if err := persistTableJSONL(tx, b.config.DataDir, tableName); err != nil {
		return fmt.Errorf("persisting %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		// The file already holds the change; rewrite it from committed state.
		if perr := persistTableJSONL(b.db, b.config.DataDir, tableName); perr != nil {
			b.logger.Error("JSONL out of sync after failed commit", "file", file, "err", perr)
		}
		return fmt.Errorf("committing %s: %w", tableName, err)
	}
	return nil
}

// shouldPersistImmediately returns true for the immediate strategy (default).
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite adds a write operation to the pending queue.
// For batch strategy, the queue is flushed once it reaches batchSize.
// The caller must hold b.mu.
func (b *Backend) queueWrite(tableName, operation string, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{
		tableName: tableName,
		operation: operation,
		persist:   persist,
	})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.logger.Warn("batch flush failed", "err", err)
		}
	}
}

// flushPendingWritesLocked flushes all pending writes to JSONL files.
// The caller must hold b.mu write lock.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked executes all pending writes. Each write
// snapshots a whole table, so only the last write per table is executed.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	done := make(map[string]bool, 2)
	for i := len(b.pendingWrites) - 1; i >= 0; i-- {
		pw := b.pendingWrites[i]
		if done[pw.tableName] {
			continue
		}
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s %s: %w", pw.tableName, pw.operation, err)
		}
		done[pw.tableName] = true
	}

	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the batch interval timer for periodic flushes.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Warn("interval flush failed", "err", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
