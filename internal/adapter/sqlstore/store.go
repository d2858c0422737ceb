// Package sqlstore implements the domain repositories on database/sql with
// squirrel-built queries. The postgres and sqlite adapters open the
// connection, run migrations and hand it to New.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"nutrilog/internal/domain"
)

// Classifier maps a driver-specific error to a domain sentinel
// (domain.ErrConflict, domain.ErrNotFound, domain.ErrValidation), or nil when
// the error has no domain meaning.
type Classifier func(err error) error

// Store wraps a *sql.DB and implements the domain repository interfaces.
type Store struct {
	db       *sql.DB
	sb       squirrel.StatementBuilderType
	classify Classifier
}

// New creates a Store. placeholder is squirrel.Dollar for PostgreSQL and
// squirrel.Question for SQLite.
func New(db *sql.DB, placeholder squirrel.PlaceholderFormat, classify Classifier) *Store {
	if classify == nil {
		classify = func(error) error { return nil }
	}
	return &Store{
		db:       db,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(placeholder),
		classify: classify,
	}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// mapError converts database errors to domain errors.
// context.DeadlineExceeded and context.Canceled pass through unchanged.
func (s *Store) mapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %v: %w", entity, id, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", entity, id, domain.ErrNotFound)
	}
	if sentinel := s.classify(err); sentinel != nil {
		return fmt.Errorf("%s %v: %w: %v", entity, id, sentinel, err)
	}
	return fmt.Errorf("%s %v: %w", entity, id, err)
}

func (s *Store) queryRow(ctx context.Context, b squirrel.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

func (s *Store) query(ctx context.Context, b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) exec(ctx context.Context, b squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.ExecContext(ctx, query, args...)
}

// requireAffected turns a zero-row write into domain.ErrNotFound.
func requireAffected(res sql.Result, entity string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %v: rows affected: %w", entity, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}
