package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/celtis-pos/internal/platform/db"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS kv_entries_updated_at_idx ON kv_entries (updated_at)`
	selectSQL      = `SELECT value FROM kv_entries WHERE key = $1`
	upsertSQL      = `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteSQL = `DELETE FROM kv_entries WHERE key = $1`
)

// Postgres stores values in the kv_entries table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a pool. Call EnsureSchema once at startup.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the kv_entries table and its index when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errors.New("platform/kv: postgres pool not configured")
	}
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createTableSQL); err != nil {
			return fmt.Errorf("platform/kv: create table: %w", err)
		}
		if _, err := tx.Exec(ctx, createIndexSQL); err != nil {
			return fmt.Errorf("platform/kv: create index: %w", err)
		}
		return nil
	})
}

// Get loads the value stored for key.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	if p == nil || p.pool == nil {
		return nil, errors.New("platform/kv: postgres pool not configured")
	}
	var value []byte
	if err := p.pool.QueryRow(ctx, selectSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("platform/kv: postgres get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value for key.
func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if p == nil || p.pool == nil {
		return errors.New("platform/kv: postgres pool not configured")
	}
	if _, err := p.pool.Exec(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("platform/kv: postgres set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	if p == nil || p.pool == nil {
		return errors.New("platform/kv: postgres pool not configured")
	}
	if _, err := p.pool.Exec(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("platform/kv: postgres delete %s: %w", key, err)
	}
	return nil
}
