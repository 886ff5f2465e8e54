package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// ErrGameNotFound is returned when no live, cached or stored game has the id.
var ErrGameNotFound = errors.New("game not found")

// SnapshotStore persists snapshots durably.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context, gameID string) (*Snapshot, error)
	Delete(ctx context.Context, gameID string) error
}

// SnapshotCache holds the latest snapshot of live games.
type SnapshotCache interface {
	Get(ctx context.Context, gameID string) (*Snapshot, error)
	Set(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, gameID string) error
}

// GameNotification is pushed to UI and websocket clients.
type GameNotification struct {
	Type      string                 // event type, or GAME_STATE for a full view
	GameID    string                 // game the notification belongs to
	PlayerID  string                 // player the event is about, empty for broadcast
	Timestamp time.Time              // when the notification was created
	Data      map[string]interface{} // notification-specific data
}

// NotificationHandler receives game notifications.
type NotificationHandler func(notification GameNotification)

// NotificationGameState carries a full View after every applied action.
const NotificationGameState = "GAME_STATE"

type session struct {
	mu           sync.Mutex
	game         *Game
	lastActivity time.Time
	// finished is set by the game's GAME_OVER event while an action runs.
	finished      bool
	subscriptions []int
}

// Summary is a lobby listing entry.
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phase   Phase  `json:"phase"`
	Players int    `json:"players"`
}

// Manager hosts games. Each game processes one call at a time under its
// session lock; different games run in parallel.
type Manager struct {
	logger *zap.Logger
	cfg    Config

	mu                  sync.RWMutex
	sessions            map[string]*session
	store               SnapshotStore
	cache               SnapshotCache
	recorder            *ReplayRecorder
	notificationHandler NotificationHandler
	now                 func() time.Time
}

// NewManager creates a manager that builds every game from cfg.
func NewManager(logger *zap.Logger, cfg Config) *Manager {
	return &Manager{
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// SetStore attaches durable snapshot storage.
func (m *Manager) SetStore(store SnapshotStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
}

// SetCache attaches the live snapshot cache.
func (m *Manager) SetCache(cache SnapshotCache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = cache
}

// SetRecorder enables replay recording.
func (m *Manager) SetRecorder(recorder *ReplayRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = recorder
}

// SetNotificationHandler sets the handler for game notifications.
func (m *Manager) SetNotificationHandler(handler NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationHandler = handler
}

// emitNotification hands the notification to the handler on its own
// goroutine, so the handler may call back into the manager.
func (m *Manager) emitNotification(n GameNotification) {
	m.mu.RLock()
	handler := m.notificationHandler
	m.mu.RUnlock()

	if handler != nil {
		go handler(n)
	}
}

// CreateGame creates a game in the WAITING phase. A zero seed draws one from
// the operating system.
func (m *Manager) CreateGame(ctx context.Context, name string, seed int64) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seed == 0 {
		var err error
		if seed, err = dice.RandomSeed(); err != nil {
			return nil, fmt.Errorf("generate seed: %w", err)
		}
	}

	g, err := New(uuid.NewString(), name, m.cfg, seed, m.logger)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	s := m.register(g)

	s.mu.Lock()
	defer s.mu.Unlock()
	m.persist(ctx, g)

	if m.logger != nil {
		m.logger.Info("game created",
			zap.String("game_id", g.ID()),
			zap.String("name", name),
			zap.Int64("seed", seed),
		)
	}
	return g.View(), nil
}

// register adds a live game and starts forwarding its events. When another
// caller registered the same id first, that session wins.
func (m *Manager) register(g *Game) *session {
	m.mu.Lock()
	if existing, exists := m.sessions[g.ID()]; exists {
		m.mu.Unlock()
		return existing
	}
	s := &session{game: g, lastActivity: m.now()}
	m.sessions[g.ID()] = s
	recorder := m.recorder
	m.mu.Unlock()

	forward := g.Events().Subscribe(func(evt rules.Event) {
		data := map[string]interface{}{
			"amount":   evt.Amount,
			"position": evt.Position,
		}
		if evt.TargetID != "" {
			data["target_id"] = evt.TargetID
		}
		for k, v := range evt.Metadata {
			data[k] = v
		}
		m.emitNotification(GameNotification{
			Type:      string(evt.Type),
			GameID:    evt.GameID,
			PlayerID:  evt.PlayerID,
			Timestamp: evt.Timestamp,
			Data:      data,
		})
	})
	gameOver := g.Events().SubscribeTyped(rules.EventGameOver, func(rules.Event) {
		s.finished = true
	})
	s.subscriptions = []int{forward, gameOver}

	if recorder != nil {
		recorder.StartRecording(g.ID())
	}
	return s
}

// session returns the live session for gameID, loading it on first use.
func (m *Manager) session(ctx context.Context, gameID string) (*session, error) {
	m.mu.RLock()
	s, exists := m.sessions[gameID]
	m.mu.RUnlock()
	if exists {
		return s, nil
	}
	if _, err := m.Load(ctx, gameID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[gameID], nil
}

// Execute applies one action to a game. Rule violations come back in the
// Result; the error is reserved for missing games and state faults.
func (m *Manager) Execute(ctx context.Context, gameID string, action Action) (Result, *View, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, nil, err
	}
	s, err := m.session(ctx, gameID)
	if err != nil {
		return Result{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return m.apply(ctx, s, func(g *Game) Result { return g.Apply(action) }, action.PlayerID, string(action.Type))
}

// apply runs fn under the session lock the caller holds, then persists,
// records and broadcasts the new state.
func (m *Manager) apply(ctx context.Context, s *session, fn func(*Game) Result, playerID, action string) (Result, *View, error) {
	g := s.game
	if err := g.Fault(); err != nil {
		return Result{}, nil, fmt.Errorf("game %s: %w", g.ID(), err)
	}

	res := fn(g)
	if err := g.Fault(); err != nil {
		if m.logger != nil {
			m.logger.Error("action faulted game",
				zap.String("game_id", g.ID()),
				zap.String("player_id", playerID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
		return res, nil, fmt.Errorf("game %s: %w", g.ID(), err)
	}

	view := g.View()
	if !res.Success {
		if m.logger != nil {
			m.logger.Debug("action rejected",
				zap.String("game_id", g.ID()),
				zap.String("player_id", playerID),
				zap.String("action", action),
				zap.String("kind", string(res.Kind)),
				zap.String("message", res.Message),
			)
		}
		return res, view, nil
	}

	s.lastActivity = m.now()
	m.persist(ctx, g)
	if s.finished {
		m.flushReplay(g.ID())
	}
	m.emitNotification(GameNotification{
		Type:      NotificationGameState,
		GameID:    g.ID(),
		PlayerID:  playerID,
		Timestamp: m.now(),
		Data:      map[string]interface{}{"view": view, "action": action},
	})
	return res, view, nil
}

// persist saves the snapshot to every attached backend. Failures are logged;
// the in-memory game remains authoritative.
func (m *Manager) persist(ctx context.Context, g *Game) {
	m.mu.RLock()
	store, cache, recorder := m.store, m.cache, m.recorder
	m.mu.RUnlock()

	snap := g.Snapshot()
	if store != nil {
		if err := store.Save(ctx, snap); err != nil && m.logger != nil {
			m.logger.Warn("failed to store snapshot", zap.String("game_id", g.ID()), zap.Error(err))
		}
	}
	if cache != nil {
		if err := cache.Set(ctx, snap); err != nil && m.logger != nil {
			m.logger.Warn("failed to cache snapshot", zap.String("game_id", g.ID()), zap.Error(err))
		}
	}
	if recorder != nil {
		recorder.RecordState(snap)
	}
}

// flushReplay writes a finished game's replay to disk.
func (m *Manager) flushReplay(gameID string) {
	m.mu.RLock()
	recorder := m.recorder
	m.mu.RUnlock()
	if recorder == nil || !recorder.IsRecording(gameID) {
		return
	}
	if err := recorder.SaveReplay(gameID); err != nil && m.logger != nil {
		m.logger.Warn("failed to save replay", zap.String("game_id", gameID), zap.Error(err))
	}
}

// View returns the public state of a game.
func (m *Manager) View(ctx context.Context, gameID string) (*View, error) {
	s, err := m.session(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View(), nil
}

// Snapshot returns a full snapshot of a game.
func (m *Manager) Snapshot(ctx context.Context, gameID string) (*Snapshot, error) {
	s, err := m.session(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot(), nil
}

// Load brings a game back into memory from the cache, falling back to the
// store. A live game is returned as is.
func (m *Manager) Load(ctx context.Context, gameID string) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, live := m.sessions[gameID]
	store, cache := m.store, m.cache
	m.mu.RUnlock()
	if live {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.game.View(), nil
	}

	var snap *Snapshot
	if cache != nil {
		cached, err := cache.Get(ctx, gameID)
		switch {
		case err == nil:
			snap = cached
		case !errors.Is(err, ErrGameNotFound) && m.logger != nil:
			m.logger.Warn("snapshot cache read failed", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	if snap == nil && store != nil {
		stored, err := store.Load(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("load game %s: %w", gameID, err)
		}
		snap = stored
	}
	if snap == nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, ErrGameNotFound)
	}

	g, err := Restore(snap, m.logger)
	if err != nil {
		if m.logger != nil {
			m.logger.Error("failed to restore game", zap.String("game_id", gameID), zap.Error(err))
		}
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}

	s = m.register(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View(), nil
}

// List returns the live games ordered by name.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		out = append(out, Summary{
			ID:      s.game.ID(),
			Name:    s.game.Name(),
			Phase:   s.game.Phase(),
			Players: len(s.game.Players()),
		})
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DeleteGame drops a game from memory and from every attached backend.
func (m *Manager) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	s, live := m.sessions[gameID]
	delete(m.sessions, gameID)
	store, cache, recorder := m.store, m.cache, m.recorder
	m.mu.Unlock()

	if live {
		for _, handle := range s.subscriptions {
			s.game.Events().Unsubscribe(handle)
		}
	}

	if store != nil {
		if err := store.Delete(ctx, gameID); err != nil {
			return fmt.Errorf("delete game %s: %w", gameID, err)
		}
	} else if !live {
		return fmt.Errorf("delete game %s: %w", gameID, ErrGameNotFound)
	}
	if cache != nil {
		if err := cache.Delete(ctx, gameID); err != nil && m.logger != nil {
			m.logger.Warn("failed to evict cached snapshot", zap.String("game_id", gameID), zap.Error(err))
		}
	}
	if recorder != nil {
		recorder.ClearReplay(gameID)
	}
	if m.logger != nil {
		m.logger.Info("game deleted", zap.String("game_id", gameID))
	}
	return nil
}

// SetConnected records a connection change for a seated player.
func (m *Manager) SetConnected(ctx context.Context, gameID, playerID string, connected bool) (Result, error) {
	s, err := m.session(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, _, err := m.apply(ctx, s, func(g *Game) Result { return g.SetConnected(playerID, connected) }, playerID, "set_connected")
	return res, err
}

// ExpireTurns forces the default move for every game whose current player
// has been idle longer than timeout. It returns how many moves were forced.
func (m *Manager) ExpireTurns(ctx context.Context, timeout time.Duration) int {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	forced := 0
	for _, s := range sessions {
		s.mu.Lock()
		g := s.game
		if g.Phase().InPlay() && g.Fault() == nil && m.now().Sub(s.lastActivity) >= timeout {
			current := g.CurrentPlayerID()
			res, _, err := m.apply(ctx, s, func(g *Game) Result { return g.ForceResolve(current) }, current, "force_resolve")
			if err == nil && res.Success {
				forced++
			}
		}
		s.mu.Unlock()
	}
	return forced
}

// RunTurnTimeouts calls ExpireTurns every interval until ctx is done.
func (m *Manager) RunTurnTimeouts(ctx context.Context, timeout, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.ExpireTurns(ctx, timeout); n > 0 && m.logger != nil {
				m.logger.Info("forced idle turns", zap.Int("count", n))
			}
		}
	}
}
