// Package postgres reads short links from a PostgreSQL table with a JSONB
// destinations column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sundayezeilo/georedirect/internal/errx"
	"github.com/sundayezeilo/georedirect/internal/redirect"
)

const (
	getShortLinkSQL = `SELECT short_id, destinations FROM short_links WHERE short_id = $1`

	schemaSQL = `
		CREATE TABLE IF NOT EXISTS short_links (
			short_id     TEXT PRIMARY KEY,
			destinations JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),

			CONSTRAINT short_links_short_id_not_empty CHECK (short_id <> ''),
			CONSTRAINT short_links_destinations_object CHECK (jsonb_typeof(destinations) = 'object')
		)`
)

// querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	q querier
}

func New(q querier) *Store {
	return &Store{q: q}
}

// EnsureSchema creates the short_links table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgres.EnsureSchema"

	if _, err := s.q.Exec(ctx, schemaSQL); err != nil {
		return mapError(op, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, shortID string) (redirect.Record, bool, error) {
	const op = "postgres.Get"

	var rec redirect.Record
	err := s.q.QueryRow(ctx, getShortLinkSQL, shortID).Scan(&rec.ShortID, &rec.Destinations)
	if errors.Is(err, pgx.ErrNoRows) {
		return redirect.Record{}, false, nil
	}
	if err != nil {
		return redirect.Record{}, false, mapError(op, err)
	}
	return rec, true, nil
}

// Put inserts or replaces a record. Only used to seed data in development
// and tests.
func (s *Store) Put(ctx context.Context, rec redirect.Record) error {
	const op = "postgres.Put"

	if rec.ShortID == "" {
		return errx.E(op, errx.Invalid, errors.New("short id is required"))
	}
	dest := rec.Destinations
	if dest == nil {
		dest = map[string]string{}
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO short_links (short_id, destinations)
		VALUES ($1, $2)
		ON CONFLICT (short_id) DO UPDATE
		SET destinations = EXCLUDED.destinations, updated_at = now()`,
		rec.ShortID, dest,
	)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514", "22P02": // check_violation, invalid_text_representation
			return errx.E(op, errx.Integrity, fmt.Errorf("%s: %w", pgErr.ConstraintName, err))
		case "57014": // query_canceled
			return errx.E(op, errx.Timeout, err)
		}
		return errx.E(op, errx.Unavailable, err)
	}
	return errx.FromContext(op, errx.Unavailable, err)
}
