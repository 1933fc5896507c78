package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
)

const gameKeyPrefix = "qgomoku:game:"

// GameRedisStorage keeps the latest snapshot of every game under one key,
// expiring idle games after ttl. A zero ttl keeps them forever.
type GameRedisStorage struct {
	log   *zap.SugaredLogger
	redis *redis.Client
	ttl   time.Duration
}

func NewGameRedisStorage(log *zap.SugaredLogger, redis *redis.Client, ttl time.Duration) *GameRedisStorage {
	return &GameRedisStorage{
		log:   log,
		redis: redis,
		ttl:   ttl,
	}
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

func (g *GameRedisStorage) SaveSnapshot(ctx context.Context, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err = g.redis.Set(ctx, gameKey(snap.GameID), data, g.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (g *GameRedisStorage) LoadSnapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	data, err := g.redis.Get(ctx, gameKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return game.Snapshot{}, errs.ErrGameNotFound
		}
		return game.Snapshot{}, fmt.Errorf("redis get: %w", err)
	}

	var snap game.Snapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		g.log.Errorf("corrupted snapshot for game %s: %v", gameID, err)
		return game.Snapshot{}, fmt.Errorf("%w: %v", errs.ErrInvalidSnapshot, err)
	}
	return snap, nil
}

func (g *GameRedisStorage) DeleteSnapshot(ctx context.Context, gameID string) error {
	n, err := g.redis.Del(ctx, gameKey(gameID)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return errs.ErrGameNotFound
	}
	return nil
}
