package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/landlord/landlord-server/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "landlord.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func startedSnapshot(t *testing.T, id string) *game.Snapshot {
	t.Helper()
	g, err := game.New(id, "table "+id, game.DefaultConfig(), 7, zap.NewNop())
	require.NoError(t, err)
	require.True(t, g.AddPlayer("alice", "Alice").Success)
	require.True(t, g.AddPlayer("bob", "Bob").Success)
	require.True(t, g.Start().Success)
	require.True(t, g.RollDice("alice").Success)
	return g.Snapshot()
}

func TestSQLiteSaveLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	snap := startedSnapshot(t, "game-1")

	require.NoError(t, store.Save(ctx, snap))
	loaded, err := store.Load(ctx, "game-1")
	require.NoError(t, err)

	want, err := snap.ComputeChecksum()
	require.NoError(t, err)
	match, err := loaded.VerifyChecksum(want)
	require.NoError(t, err)
	assert.True(t, match)

	restored, err := game.Restore(loaded, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, snap.Phase, restored.Phase())
}

func TestSQLiteSaveOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	snap := startedSnapshot(t, "game-1")
	require.NoError(t, store.Save(ctx, snap))

	snap.Name = "renamed"
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Name)

	games, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "renamed", games[0].Name)
	assert.Equal(t, string(snap.Phase), games[0].Phase)
}

func TestSQLiteNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, game.ErrGameNotFound))
}

func TestSQLiteDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, startedSnapshot(t, "game-1")))
	require.NoError(t, store.Save(ctx, startedSnapshot(t, "game-2")))

	require.NoError(t, store.Delete(ctx, "game-1"))
	require.NoError(t, store.Delete(ctx, "game-1"))

	_, err := store.Load(ctx, "game-1")
	assert.True(t, errors.Is(err, game.ErrGameNotFound))
	games, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "game-2", games[0].GameID)
}

func TestSQLiteDetectsTampering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, startedSnapshot(t, "game-1")))

	_, err := store.db.ExecContext(ctx, `UPDATE game_snapshots SET checksum = 'bogus' WHERE game_id = ?`, "game-1")
	require.NoError(t, err)

	_, err = store.Load(ctx, "game-1")
	assert.True(t, errors.Is(err, game.ErrCorruptSnapshot))
}

func TestSQLiteWithManager(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := game.NewManager(zap.NewNop(), game.DefaultConfig())
	first.SetStore(store)
	view, err := first.CreateGame(ctx, "persisted", 3)
	require.NoError(t, err)
	_, _, err = first.Execute(ctx, view.GameID, game.Action{Type: game.ActionJoin, PlayerID: "alice"})
	require.NoError(t, err)

	second := game.NewManager(zap.NewNop(), game.DefaultConfig())
	second.SetStore(store)
	loaded, err := second.Load(ctx, view.GameID)
	require.NoError(t, err)
	require.Len(t, loaded.Players, 1)
	assert.Equal(t, "alice", loaded.Players[0].ID)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(" ", zap.NewNop())
	assert.Error(t, err)
}
