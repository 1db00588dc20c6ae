package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cep_lookup/platform/normalize"
)

// PostgresStore keeps entries in the postal_codes table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Find(ctx context.Context, city, region string) (Entry, error) {
	var e Entry
	err := s.pool.QueryRow(ctx, `
		SELECT city, region, code, source
		FROM postal_codes
		WHERE city_norm = $1 AND region = $2
		ORDER BY CASE source WHEN 'base' THEN 0 ELSE 1 END, id
		LIMIT 1`,
		normalize.City(city), normalize.Region(region),
	).Scan(&e.City, &e.Region, &e.Code, &e.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find postal code: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Add(ctx context.Context, e Entry) (bool, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO postal_codes (city, city_norm, region, code, source)
		VALUES ($1, $2, $3, $4, $5)`,
		e.City, normalize.City(e.City), normalize.Region(e.Region), e.Code, SourceUser,
	)
	if err != nil {
		return false, fmt.Errorf("insert postal code: %w", err)
	}
	return true, nil
}

// Count returns the number of rows in the table.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM postal_codes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count postal codes: %w", err)
	}
	return n, nil
}

// Seed bulk-loads entries with COPY.
func (s *PostgresStore) Seed(ctx context.Context, entries []Entry) (int64, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		source := e.Source
		if source == "" {
			source = SourceBase
		}
		rows = append(rows, []any{e.City, normalize.City(e.City), normalize.Region(e.Region), e.Code, source})
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"postal_codes"},
		[]string{"city", "city_norm", "region", "code", "source"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("seed postal codes: %w", err)
	}
	return n, nil
}

var _ Store = (*PostgresStore)(nil)
