package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 1

// Replay is a recorded game: one snapshot per applied action, in order.
type Replay struct {
	GameID       string
	States       []*Snapshot
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for gameID.
func NewReplay(gameID string) *Replay {
	return &Replay{
		GameID: gameID,
		States: make([]*Snapshot, 0),
	}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, snapshot)
}

// Start rewinds to the first state.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the state at the cursor and moves past it.
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex >= len(r.States) {
		return nil
	}
	state := r.States[r.CurrentIndex]
	r.CurrentIndex++
	return state
}

// Previous steps back and returns that state.
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex == 0 {
		return nil
	}
	r.CurrentIndex--
	return r.States[r.CurrentIndex]
}

// Skip moves the cursor by count states, clamped to the recording.
func (r *Replay) Skip(count int) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		return nil
	}
	idx := r.CurrentIndex + count
	if idx >= len(r.States) {
		idx = len(r.States) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.CurrentIndex = idx
	return r.States[idx]
}

// Size returns the number of recorded states.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// StateAt returns the state at index, or nil.
func (r *Replay) StateAt(index int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.States) {
		return nil
	}
	return r.States[index]
}

// GameAt rebuilds a playable game from the state at index.
func (r *Replay) GameAt(index int, logger *zap.Logger) (*Game, error) {
	state := r.StateAt(index)
	if state == nil {
		return nil, fmt.Errorf("replay %s has no state %d", r.GameID, index)
	}
	return Restore(state, logger)
}

// replayMetadata heads every replay file. Checksum covers the final state.
type replayMetadata struct {
	GameID     string
	Timestamp  time.Time
	Version    int
	StateCount int
	Checksum   string
}

// SaveToFile writes <directory>/<game id>.replay as gzipped gob: a metadata
// header followed by every state.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	metadata := replayMetadata{
		GameID:     r.GameID,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		StateCount: len(r.States),
	}
	if n := len(r.States); n > 0 {
		sum, err := r.States[n-1].ComputeChecksum()
		if err != nil {
			return err
		}
		metadata.Checksum = sum.Hash
	}

	file, err := os.Create(replayPath(directory, r.GameID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i, state := range r.States {
		if err := encoder.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile and verifies the
// final state against the stored checksum.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.GameID)
	for i := 0; i < metadata.StateCount; i++ {
		var state Snapshot
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		replay.States = append(replay.States, &state)
	}

	if n := len(replay.States); n > 0 {
		match, err := replay.States[n-1].VerifyChecksum(&SerializationChecksum{Hash: metadata.Checksum})
		if err != nil {
			return nil, err
		}
		if !match {
			return nil, fmt.Errorf("%w: replay %s final state checksum mismatch", ErrCorruptSnapshot, gameID)
		}
	}
	return replay, nil
}

func replayPath(directory, gameID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))
}

// ReplayRecorder keeps in-memory replays per game and flushes them to disk.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // gameID -> Replay
	enabled map[string]bool    // gameID -> recording on
	saveDir string
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a game.
func (rr *ReplayRecorder) StartRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if _, exists := rr.replays[gameID]; !exists {
		rr.replays[gameID] = NewReplay(gameID)
	}
	rr.enabled[gameID] = true

	if rr.logger != nil {
		rr.logger.Info("started replay recording",
			zap.String("game_id", gameID),
		)
	}
}

// StopRecording pauses recording without discarding what was captured.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	if rr.logger != nil {
		rr.logger.Info("stopped replay recording",
			zap.String("game_id", gameID),
		)
	}
}

// RecordState records a snapshot if recording is on for its game.
func (rr *ReplayRecorder) RecordState(snapshot *Snapshot) {
	if snapshot == nil {
		return
	}
	rr.mu.RLock()
	enabled := rr.enabled[snapshot.GameID]
	replay := rr.replays[snapshot.GameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}

	replay.RecordState(snapshot)

	if rr.logger != nil {
		rr.logger.Debug("recorded replay state",
			zap.String("game_id", snapshot.GameID),
			zap.Int("state_count", replay.Size()),
		)
	}
}

// Replay returns the in-memory replay for a game.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// SaveReplay writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(gameID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[gameID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for game %s", gameID)
	}
	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("game_id", gameID),
			zap.Int("state_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}
	return nil
}

// LoadReplay reads a saved replay from disk.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		rr.logger.Info("loaded replay from disk",
			zap.String("game_id", gameID),
			zap.Int("state_count", replay.Size()),
		)
	}
	return replay, nil
}

// ClearReplay drops a replay from memory without saving.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
}

// IsRecording reports whether recording is on for a game.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
