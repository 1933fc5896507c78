package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
)

type GameStore interface {
	SaveSnapshot(ctx context.Context, snap game.Snapshot) error
	LoadSnapshot(ctx context.Context, gameID string) (game.Snapshot, error)
	DeleteSnapshot(ctx context.Context, gameID string) error
}

// Notifier forwards turn, winner and close events to whoever displays the game.
type Notifier interface {
	NotifyTurn(gameID string, info game.TurnInfo)
	NotifyWinner(gameID string, info game.WinnerInfo)
	NotifyClosed(gameID string)
}

const storeTimeout = 5 * time.Second

type session struct {
	mu     sync.Mutex
	id     string
	game   *game.Game
	closed bool
	err    error
}

type GameUseCase struct {
	log       *zap.SugaredLogger
	store     GameStore
	notifier  Notifier
	newRoller func() game.Roller

	mu       sync.RWMutex
	sessions map[string]*session
}

type Option func(*GameUseCase)

// WithRoller replaces the random source handed to every new or restored game.
func WithRoller(newRoller func() game.Roller) Option {
	return func(g *GameUseCase) { g.newRoller = newRoller }
}

// NewGameUseCase builds the use case. store and notifier may be nil.
func NewGameUseCase(log *zap.SugaredLogger, store GameStore, notifier Notifier, opts ...Option) *GameUseCase {
	g := &GameUseCase{
		log:       log,
		store:     store,
		notifier:  notifier,
		newRoller: game.NewRoller,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GameUseCase) CreateGame(ctx context.Context) (string, error) {
	s := &session{
		id:   uuid.New().String(),
		game: game.NewGame(g.newRoller()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g.mu.Lock()
	g.sessions[s.id] = s
	g.mu.Unlock()

	g.save(ctx, s)

	g.log.Infof("game created: %s", s.id)
	return s.id, nil
}

// acquire returns the session locked, restoring it from the store when the
// process has no copy of it. Callers unlock s.mu. A closed session reads as
// not found.
func (g *GameUseCase) acquire(ctx context.Context, gameID string) (*session, error) {
	g.mu.RLock()
	s, ok := g.sessions[gameID]
	g.mu.RUnlock()

	if !ok {
		g.mu.Lock()
		s, ok = g.sessions[gameID]
		if !ok {
			if g.store == nil {
				g.mu.Unlock()
				return nil, errs.ErrGameNotFound
			}
			// the placeholder is locked before it is published, others wait on it
			s = &session{id: gameID}
			s.mu.Lock()
			g.sessions[gameID] = s
			g.mu.Unlock()
			g.restore(ctx, s)
		} else {
			g.mu.Unlock()
			s.mu.Lock()
		}
	} else {
		s.mu.Lock()
	}

	switch {
	case s.err != nil:
		err := s.err
		s.mu.Unlock()
		return nil, err
	case s.closed:
		s.mu.Unlock()
		return nil, errs.ErrGameNotFound
	}
	return s, nil
}

// restore fills a placeholder session from the store. On failure the
// placeholder keeps the error and leaves the map.
func (g *GameUseCase) restore(ctx context.Context, s *session) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	snap, err := g.store.LoadSnapshot(ctx, s.id)
	if err == nil {
		s.game, err = game.RestoreGame(snap, g.newRoller())
		if err != nil {
			err = fmt.Errorf("restore game %s: %w", s.id, err)
		}
	} else if !errors.Is(err, errs.ErrGameNotFound) {
		err = fmt.Errorf("load game %s: %w", s.id, err)
	}
	if err != nil {
		s.err = err
		g.forget(s)
		return
	}
	g.log.Infof("game restored from store: %s", s.id)
}

// forget drops s from the session map unless another session replaced it.
func (g *GameUseCase) forget(s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sessions[s.id] == s {
		delete(g.sessions, s.id)
	}
}

// save runs with s.mu held so snapshots of one game are written in order.
func (g *GameUseCase) save(ctx context.Context, s *session) {
	if g.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := g.store.SaveSnapshot(ctx, s.game.Snapshot(s.id)); err != nil {
		g.log.Errorf("failed to save snapshot of game %s: %v", s.id, err)
	}
}

func (g *GameUseCase) notifyTurn(s *session) {
	if g.notifier != nil {
		g.notifier.NotifyTurn(s.id, s.game.TurnInfo())
	}
}

func (g *GameUseCase) GetBoard(ctx context.Context, gameID string) (game.BoardResponse, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return game.BoardResponse{}, err
	}
	defer s.mu.Unlock()
	return s.game.BoardResponse(), nil
}

func (g *GameUseCase) GetTurn(ctx context.Context, gameID string) (game.TurnInfo, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return game.TurnInfo{}, err
	}
	defer s.mu.Unlock()
	return s.game.TurnInfo(), nil
}

func (g *GameUseCase) GetStatus(ctx context.Context, gameID string) (game.StatusResponse, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return game.StatusResponse{}, err
	}
	defer s.mu.Unlock()
	winner, _ := s.game.Winner()
	return game.StatusResponse{Status: s.game.Status(), Winner: winner.String()}, nil
}

func (g *GameUseCase) IsValidPosition(ctx context.Context, gameID string, x, y int) (bool, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.game.IsValidPosition(x, y), nil
}

// PlaceStone returns the black-resolve percent of the placed stone.
func (g *GameUseCase) PlaceStone(ctx context.Context, gameID string, x, y int) (int, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	stone, err := s.game.PlaceStone(x, y)
	if err != nil {
		return 0, err
	}
	g.log.Debugf("game %s: %s placed at (%d, %d)", s.id, stone, x, y)

	g.save(ctx, s)
	g.notifyTurn(s)

	return stone.ResolvePercent(), nil
}

// Observe collapses the board, then announces the winner if the observation
// ends the game. A finished game can still be observed; its winner is kept.
func (g *GameUseCase) Observe(ctx context.Context, gameID string) (game.BoardResponse, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return game.BoardResponse{}, err
	}
	defer s.mu.Unlock()

	wasOver := s.game.IsOver()
	observed := s.game.Observe()
	g.notifyTurn(s)

	winner, over := s.game.Conclude()
	g.save(ctx, s)

	if over && !wasOver {
		g.log.Infof("game %s is over, winner: %s", s.id, winner)
		if g.notifier != nil {
			g.notifier.NotifyWinner(s.id, game.WinnerInfo{Winner: winner.String()})
		}
	}

	return game.ObservedResponse(observed), nil
}

func (g *GameUseCase) Reset(ctx context.Context, gameID string) (game.TurnInfo, error) {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		return game.TurnInfo{}, err
	}
	defer s.mu.Unlock()

	s.game.Reset()
	g.save(ctx, s)
	g.notifyTurn(s)

	g.log.Infof("game %s reset", s.id)
	return s.game.TurnInfo(), nil
}

// CloseGame marks the session closed, removes its snapshot and disconnects
// the game's subscribers. Commands already waiting on the session fail with
// ErrGameNotFound once they get it.
func (g *GameUseCase) CloseGame(ctx context.Context, gameID string) error {
	s, err := g.acquire(ctx, gameID)
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidSnapshot) {
			return err
		}
		// a snapshot that cannot be restored can still be removed
		return g.deleteSnapshot(ctx, gameID)
	}
	defer s.mu.Unlock()

	s.closed = true
	g.forget(s)

	if g.notifier != nil {
		g.notifier.NotifyClosed(gameID)
	}
	if g.store == nil {
		return nil
	}
	if err = g.deleteSnapshot(ctx, gameID); err != nil && !errors.Is(err, errs.ErrGameNotFound) {
		return err
	}
	g.log.Infof("game %s closed", gameID)
	return nil
}

func (g *GameUseCase) deleteSnapshot(ctx context.Context, gameID string) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return g.store.DeleteSnapshot(ctx, gameID)
}
