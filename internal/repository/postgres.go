package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landlord/landlord-server/internal/game"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS game_snapshots (
	game_id    TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	phase      TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps snapshots in PostgreSQL as JSONB documents.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ game.SnapshotStore = (*PostgresStore)(nil)

// NewPostgresStore connects a pool to dsn and creates the schema.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int, logger *zap.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if logger != nil {
		stats := pool.Stat()
		logger.Info("database connection pool initialized",
			zap.Int32("max_conns", stats.MaxConns()),
			zap.Int32("total_conns", stats.TotalConns()),
		)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Save upserts the snapshot of a game.
func (s *PostgresStore) Save(ctx context.Context, snap *game.Snapshot) error {
	row, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO game_snapshots (game_id, name, phase, checksum, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (game_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   phase = EXCLUDED.phase,
		   checksum = EXCLUDED.checksum,
		   data = EXCLUDED.data,
		   updated_at = EXCLUDED.updated_at`,
		row.GameID, row.Name, row.Phase, row.Checksum, string(row.Data), row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", row.GameID, err)
	}
	return nil
}

// Load returns the latest snapshot of a game.
func (s *PostgresStore) Load(ctx context.Context, gameID string) (*game.Snapshot, error) {
	var (
		data     []byte
		checksum string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT data, checksum FROM game_snapshots WHERE game_id = $1`, gameID,
	).Scan(&data, &checksum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return decodeSnapshot(gameID, data, checksum)
}

// Delete removes a game.
func (s *PostgresStore) Delete(ctx context.Context, gameID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM game_snapshots WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	return nil
}
