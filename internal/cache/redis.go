// Package cache keeps recent game snapshots in Redis so a restarted or
// second server can pick up live games without a database read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/landlord/landlord-server/internal/game"
	"go.uber.org/zap"
)

// NewPool creates a redis connection pool for address.
func NewPool(address string, maxIdle int) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: 60 * time.Second,
		Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", address) },
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// SnapshotCache stores gob encoded snapshots under prefix+gameID with a TTL.
type SnapshotCache struct {
	pool   *redis.Pool
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ game.SnapshotCache = (*SnapshotCache)(nil)

func NewSnapshotCache(pool *redis.Pool, prefix string, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{pool: pool, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *SnapshotCache) key(gameID string) string {
	return c.prefix + gameID
}

// Get returns the cached snapshot or an error wrapping game.ErrGameNotFound.
func (c *SnapshotCache) Get(ctx context.Context, gameID string) (*game.Snapshot, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", c.key(gameID)))
	if errors.Is(err, redis.ErrNil) {
		return nil, fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", gameID, err)
	}

	snap, err := game.DeserializeFromBytes(data)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("dropping unreadable cached snapshot", zap.String("game_id", gameID), zap.Error(err))
		}
		_, _ = conn.Do("DEL", c.key(gameID))
		return nil, fmt.Errorf("game %s: %w", gameID, game.ErrGameNotFound)
	}
	return snap, nil
}

// Set caches a snapshot, refreshing its TTL.
func (c *SnapshotCache) Set(ctx context.Context, snap *game.Snapshot) error {
	data, err := snap.SerializeToBytes()
	if err != nil {
		return err
	}
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer conn.Close()

	args := redis.Args{}.Add(c.key(snap.GameID), data)
	if seconds := int(c.ttl / time.Second); seconds > 0 {
		args = args.Add("EX", seconds)
	}
	reply, err := redis.String(conn.Do("SET", args...))
	if err != nil {
		return fmt.Errorf("redis set %s: %w", snap.GameID, err)
	}
	if reply != "OK" {
		return fmt.Errorf("redis set %s: unexpected reply %q", snap.GameID, reply)
	}
	return nil
}

// Delete evicts a game.
func (c *SnapshotCache) Delete(ctx context.Context, gameID string) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Do("DEL", c.key(gameID)); err != nil {
		return fmt.Errorf("redis del %s: %w", gameID, err)
	}
	return nil
}
