// Package repository persists game snapshots.
package repository

import (
	"fmt"
	"time"

	"github.com/landlord/landlord-server/internal/game"
)

// snapshotRow is the stored form of a snapshot.
type snapshotRow struct {
	GameID    string
	Name      string
	Phase     string
	Checksum  string
	Data      []byte
	UpdatedAt time.Time
}

func encodeSnapshot(snap *game.Snapshot) (snapshotRow, error) {
	if snap == nil || snap.GameID == "" {
		return snapshotRow{}, fmt.Errorf("snapshot with a game id is required")
	}
	data, err := game.MarshalSnapshot(snap)
	if err != nil {
		return snapshotRow{}, err
	}
	sum, err := snap.ComputeChecksum()
	if err != nil {
		return snapshotRow{}, err
	}
	updatedAt := snap.Timestamp.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return snapshotRow{
		GameID:    snap.GameID,
		Name:      snap.Name,
		Phase:     string(snap.Phase),
		Checksum:  sum.Hash,
		Data:      data,
		UpdatedAt: updatedAt,
	}, nil
}

// decodeSnapshot parses a stored row and checks it against its checksum.
func decodeSnapshot(gameID string, data []byte, checksum string) (*game.Snapshot, error) {
	snap, err := game.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}
	sum, err := snap.ComputeChecksum()
	if err != nil {
		return nil, err
	}
	if sum.Hash != checksum {
		return nil, fmt.Errorf("game %s: checksum mismatch: %w", gameID, game.ErrCorruptSnapshot)
	}
	return snap, nil
}

func notFound(gameID string) error {
	return fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
}
