package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Postgres struct {
	dbpool       *sql.DB
	queryTimeout time.Duration
}

func NewPostgres(dbpool *sql.DB, queryTimeout time.Duration) *Postgres {
	return &Postgres{
		dbpool:       dbpool,
		queryTimeout: queryTimeout,
	}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	_, err := p.dbpool.ExecContext(ctx, query)
	return err
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	var value []byte
	if err := p.dbpool.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	_, err := p.dbpool.ExecContext(ctx, query, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	_, err := p.dbpool.ExecContext(ctx, query, key)
	return err
}
