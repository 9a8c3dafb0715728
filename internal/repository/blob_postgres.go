package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

const createSnapshotTable = `CREATE TABLE IF NOT EXISTS roster_snapshots (
    key TEXT PRIMARY KEY,
    payload BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresBlobStore keeps blobs in the roster_snapshots table.
type PostgresBlobStore struct {
	db *sqlx.DB
}

// NewPostgresBlobStore constructs a PostgreSQL-backed store.
func NewPostgresBlobStore(db *sqlx.DB) *PostgresBlobStore {
	return &PostgresBlobStore{db: db}
}

// EnsureSchema creates the snapshot table when missing.
func (s *PostgresBlobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("create roster_snapshots: %w", err)
	}
	return nil
}

// Get fetches the payload for key.
func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM roster_snapshots WHERE key = $1`
	var payload []byte
	if err := s.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get roster snapshot: %w", err)
	}
	return payload, nil
}

// Put upserts the payload for key.
func (s *PostgresBlobStore) Put(ctx context.Context, key string, payload []byte) error {
	const query = `INSERT INTO roster_snapshots (key, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert roster snapshot: %w", err)
	}
	return nil
}
