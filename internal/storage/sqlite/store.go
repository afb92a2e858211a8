// Package sqlite provides a SQLite-backed implementation of the storage
// ports, used for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hongminglow/all-in-users/internal/dbx"
	"github.com/hongminglow/all-in-users/internal/storage"
	"github.com/hongminglow/all-in-users/internal/storage/migrate"
	"github.com/hongminglow/all-in-users/internal/storage/sqlite/migrations"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Ensure Store satisfies the storage.Transactor interface at compile time.
var _ storage.Transactor = (*Store)(nil)

// Store owns the SQLite handle shared by the user and profile repositories.
type Store struct {
	db *sql.DB
}

// Open opens the database file at path and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := migrate.Up(ctx, db, migrate.DialectSQLite, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the raw handle for fixtures and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Users returns the user repository.
func (s *Store) Users() storage.UserRepository {
	return &UserRepository{db: s.db}
}

// Profiles returns the profile repository.
func (s *Store) Profiles() storage.ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// WithinTx runs fn inside a single SQLite transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return dbx.WithinTx(ctx, s.db, fn)
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	var sErr *sqlite.Error
	if errors.As(err, &sErr) && sErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
