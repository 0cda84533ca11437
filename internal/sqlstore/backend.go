// Package sqlstore implements types.Store on SQL databases. SQLite
// (modernc.org/sqlite) is the embedded default; PostgreSQL (lib/pq) serves
// shared deployments. Both dialects run the same query text, written with
// `?` placeholders and rebound by sqlx for the driver in use.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// DatabaseFile is the SQLite database file name inside DataDir.
const DatabaseFile = "chatkeep.db"

// sqlitePragmas enables foreign keys, waits on a locked database instead of
// failing, and uses WAL journaling.
const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Backend implements types.Store over a SQL database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sqlx.DB
}

// NewBackend creates a new backend. The backend is not attached; call
// Attach with a Config to open the database.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database described by config and creates the schema if
// it does not exist. For SQLite, DataDir is created when missing.
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

	db, err := open(config)
	if err != nil {
		return err
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// open connects to the configured backend.
func open(config types.Config) (*sqlx.DB, error) {
	switch config.Backend {
	case types.BackendPostgres:
		db, err := sqlx.Open("postgres", config.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, nil

	default:
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		dsn := "file:" + filepath.Join(dataDir, DatabaseFile) + sqlitePragmas
		db, err := sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		// One connection serializes writers and keeps the pragmas in force.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return db, nil
	}
}

// Detach closes the database. After Detach, View and Update return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
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

// View runs fn against the database outside any transaction.
func (b *Backend) View(ctx context.Context, fn func(types.Records) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn(&records{q: b.db})
}

// Update runs fn inside one transaction and commits when fn returns nil.
// On PostgreSQL, point reads of chats and folders inside the transaction
// take row locks so that concurrent updates of the same chat serialize.
func (b *Backend) Update(ctx context.Context, fn func(types.Records) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r := &records{q: tx, lockRows: b.config.Backend == types.BackendPostgres}
	if err := fn(r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// newID generates a UUID v7 for record IDs.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}
