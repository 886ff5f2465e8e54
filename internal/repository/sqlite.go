package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/landlord/landlord-server/internal/game"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS game_snapshots (
		game_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		phase      TEXT NOT NULL,
		checksum   TEXT NOT NULL,
		data       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_snapshots_phase ON game_snapshots (phase)`,
}

// SQLiteStore keeps snapshots in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ game.SnapshotStore = (*SQLiteStore)(nil)

// OpenSQLite opens the database at path and creates the schema.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	if logger != nil {
		logger.Info("sqlite snapshot store opened", zap.String("path", path))
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or replaces the snapshot of a game.
func (s *SQLiteStore) Save(ctx context.Context, snap *game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO game_snapshots (game_id, name, phase, checksum, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
		   name = excluded.name,
		   phase = excluded.phase,
		   checksum = excluded.checksum,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		row.GameID, row.Name, row.Phase, row.Checksum, row.Data, row.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", row.GameID, err)
	}
	return nil
}

// Load returns the latest snapshot of a game.
func (s *SQLiteStore) Load(ctx context.Context, gameID string) (*game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		data     []byte
		checksum string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, checksum FROM game_snapshots WHERE game_id = ?`, gameID,
	).Scan(&data, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return decodeSnapshot(gameID, data, checksum)
}

// Delete removes a game. Deleting an unknown game is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_snapshots WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	return nil
}

// StoredGame describes a persisted game without decoding it.
type StoredGame struct {
	GameID    string    `json:"game_id"`
	Name      string    `json:"name"`
	Phase     string    `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns the persisted games, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]StoredGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, name, phase, updated_at FROM game_snapshots ORDER BY updated_at DESC, game_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var games []StoredGame
	for rows.Next() {
		var (
			g       StoredGame
			updated int64
		)
		if err := rows.Scan(&g.GameID, &g.Name, &g.Phase, &updated); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		g.UpdatedAt = time.UnixMilli(updated).UTC()
		games = append(games, g)
	}
	return games, rows.Err()
}
