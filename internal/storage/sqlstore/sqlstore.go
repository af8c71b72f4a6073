// Package sqlstore provides a SQL implementation of storage.Store backed by
// SQLite (pure Go driver) or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/clubhouse/internal/storage"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Options tunes the connection pool and per-query timeout.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// Store implements storage.Store over database/sql via sqlx.
type Store struct {
	db      *sqlx.DB
	driver  string
	timeout time.Duration
}

// Open connects to the database and runs migrations.
// For SQLite the dsn is a file path; parent directories are created.
func Open(ctx context.Context, driver, dsn string, opts Options) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			dsn = "file:" + dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	s := &Store{db: db, driver: driver, timeout: opts.QueryTimeout}

	pingCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// New wraps an existing connection without running migrations.
// Used with sqlmock in tests.
func New(db *sql.DB, driver string, queryTimeout time.Duration) *Store {
	return &Store{db: sqlx.NewDb(db, driver), driver: driver, timeout: queryTimeout}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTimeout bounds a single storage call by the configured query timeout.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) rebind(query string) string {
	return s.db.Rebind(query)
}

// isUniqueViolation recognises unique constraint errors from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation recognises foreign key errors from both drivers.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// writeErr maps driver errors on insert/update/delete to storage sentinels.
func writeErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w", op, storage.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: %w", op, storage.ErrReferenced)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// readErr maps sql.ErrNoRows to storage.ErrNotFound.
func readErr(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// expectOne returns ErrNotFound when an update or delete touched no rows.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
