package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/fleetops/internal/repositories"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS fleet_state (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// SnapshotRepository stores one JSONB document per key in fleet_state.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Connect opens a pool for dsn, verifies it and makes sure the table exists.
func Connect(ctx context.Context, dsn string) (*SnapshotRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: verify connection: %w", err)
	}

	r := NewSnapshotRepository(pool)
	if err := r.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *SnapshotRepository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("postgres store: init schema: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM fleet_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get %q: %w", key, err)
	}
	return value, nil
}

func (r *SnapshotRepository) PutMany(ctx context.Context, snapshots map[string][]byte) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO fleet_state (key, value, updated_at)
        VALUES ($1, $2::jsonb, CURRENT_TIMESTAMP)
        ON CONFLICT (key) DO UPDATE
        SET value = EXCLUDED.value,
            updated_at = EXCLUDED.updated_at
    `

	for key, value := range snapshots {
		if _, err := tx.Exec(ctx, query, key, string(value)); err != nil {
			return fmt.Errorf("postgres store: put %q: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: commit tx: %w", err)
	}
	return nil
}

// Count returns how many snapshots are stored.
func (r *SnapshotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM fleet_state").Scan(&count)
	return count, err
}

// DeleteAll removes every snapshot so the next start seeds from fixtures.
func (r *SnapshotRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE fleet_state")
	return err
}

func (r *SnapshotRepository) Close() error {
	r.pool.Close()
	return nil
}
