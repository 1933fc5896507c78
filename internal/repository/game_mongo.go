package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"quantum_gomoku/internal/adapters"
	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
)

const gamesCollection = "games"

// GameMongoStorage upserts one document per game, keyed by game id.
type GameMongoStorage struct {
	log     *zap.SugaredLogger
	adapter *adapters.AdapterMongo
}

func NewGameMongoStorage(log *zap.SugaredLogger, adapter *adapters.AdapterMongo) *GameMongoStorage {
	return &GameMongoStorage{log: log, adapter: adapter}
}

func (m *GameMongoStorage) collection() *mongo.Collection {
	return m.adapter.Database.Collection(gamesCollection)
}

func (m *GameMongoStorage) SaveSnapshot(ctx context.Context, snap game.Snapshot) error {
	filter := bson.M{"_id": snap.GameID}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection().ReplaceOne(ctx, filter, snap, opts); err != nil {
		return fmt.Errorf("failed to save game %s: %w", snap.GameID, err)
	}
	return nil
}

func (m *GameMongoStorage) LoadSnapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := m.collection().FindOne(ctx, bson.M{"_id": gameID}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Snapshot{}, errs.ErrGameNotFound
	} else if err != nil {
		m.log.Error(err)
		return game.Snapshot{}, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return snap, nil
}

func (m *GameMongoStorage) DeleteSnapshot(ctx context.Context, gameID string) error {
	res, err := m.collection().DeleteOne(ctx, bson.M{"_id": gameID})
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	if res.DeletedCount == 0 {
		return errs.ErrGameNotFound
	}
	return nil
}
