// Package postgres implements repositories.Store on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedapp/app/logging"
	"feedapp/app/repositories"
)

// Store is a repositories.Store and repositories.UpvoteToggler backed by
// PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ repositories.Store         = (*Store)(nil)
	_ repositories.UpvoteToggler = (*Store)(nil)
)

// New connects to dsn and applies the schema.
func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 128

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewFromPool(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logging.Info().Int32("max_conns", cfg.MaxConns).Msg("postgres store ready")
	return s, nil
}

// NewFromPool wraps an existing pool without touching the schema.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Truncate removes all rows from every table.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	return wrap("truncate", err)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// wrap maps driver errors onto the repository sentinels and wraps them as
// a DataAccessError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		err = repositories.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			err = fmt.Errorf("%w: %s", repositories.ErrDuplicate, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			err = fmt.Errorf("%w: %s", repositories.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return repositories.WrapErr(op, err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
