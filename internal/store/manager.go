package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Manager owns the service's SQLite database.
//
// Every transaction is opened with BEGIN IMMEDIATE (_txlock=immediate), so
// the write lock is held from the first statement. Validation reads that
// precede an insert inside WithTx therefore see every committed edge and no
// concurrent writer can slip in between.
type Manager struct {
	db   *sqlx.DB
	path string
}

// Open opens (creating if necessary) the database at path and applies the schema.
func Open(path string) (*Manager, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	m := &Manager{db: db, path: path}
	if err := m.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// Migrate applies the schema. It is safe to run repeatedly.
func (m *Manager) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// DB returns the underlying handle for non-transactional reads.
func (m *Manager) DB() *sqlx.DB {
	return m.db
}

// Path returns the database file path.
func (m *Manager) Path() string {
	return m.path
}

// WithTx runs fn in a transaction, committing if fn returns nil and rolling
// back otherwise. A panic in fn rolls back and is re-raised.
func (m *Manager) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (m *Manager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}
