package game

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quantum_gomoku/internal/domain/game"
	errs "quantum_gomoku/internal/errors"
	"quantum_gomoku/internal/statuses"
)

type fixedRoller int

func (r fixedRoller) Intn(int) int { return int(r) }

func fixed(n int) func() game.Roller {
	return func() game.Roller { return fixedRoller(n) }
}

type memoryStore struct {
	mu    sync.Mutex
	snaps map[string]game.Snapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snaps: make(map[string]game.Snapshot)}
}

func (m *memoryStore) SaveSnapshot(_ context.Context, snap game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.GameID] = snap
	return nil
}

func (m *memoryStore) LoadSnapshot(_ context.Context, gameID string) (game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[gameID]
	if !ok {
		return game.Snapshot{}, errs.ErrGameNotFound
	}
	return snap, nil
}

func (m *memoryStore) DeleteSnapshot(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[gameID]; !ok {
		return errs.ErrGameNotFound
	}
	delete(m.snaps, gameID)
	return nil
}

// gatedStore blocks the first SaveSnapshot after arming until release is closed.
type gatedStore struct {
	*memoryStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		memoryStore: newMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) SaveSnapshot(ctx context.Context, snap game.Snapshot) error {
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return s.memoryStore.SaveSnapshot(ctx, snap)
}

type recordingNotifier struct {
	mu      sync.Mutex
	turns   []game.TurnInfo
	winners []game.WinnerInfo
	closed  []string
}

func (r *recordingNotifier) NotifyTurn(_ string, info game.TurnInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, info)
}

func (r *recordingNotifier) NotifyWinner(_ string, info game.WinnerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append(r.winners, info)
}

func (r *recordingNotifier) NotifyClosed(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, gameID)
}

func newTestUseCase(t *testing.T, roll int) (*GameUseCase, *memoryStore, *recordingNotifier, string) {
	t.Helper()
	store := newMemoryStore()
	notifier := &recordingNotifier{}
	uc := NewGameUseCase(zap.NewNop().Sugar(), store, notifier, WithRoller(fixed(roll)))
	id, err := uc.CreateGame(context.Background())
	require.NoError(t, err)
	return uc, store, notifier, id
}

func TestPlaceStoneNotifiesTurn(t *testing.T) {
	uc, store, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	p, err := uc.PlaceStone(ctx, id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 70, p)

	p, err = uc.PlaceStone(ctx, id, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, p)

	assert.Equal(t, []game.TurnInfo{
		{Player: "white", P: 10},
		{Player: "black", P: 90},
	}, notifier.turns)

	board, err := uc.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.BoardSize, board.Size)
	assert.Equal(t, 70, *board.Cells[0][0])
	assert.Equal(t, 10, *board.Cells[0][1])

	assert.Len(t, store.snaps[id].Stones, 2)
}

func TestPlaceStoneInvalidLeavesState(t *testing.T) {
	uc, _, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	_, err := uc.PlaceStone(ctx, id, 4, 4)
	require.NoError(t, err)

	_, err = uc.PlaceStone(ctx, id, 4, 4)
	assert.ErrorIs(t, err, errs.ErrInvalidPosition)
	_, err = uc.PlaceStone(ctx, id, -1, 20)
	assert.ErrorIs(t, err, errs.ErrInvalidPosition)

	turn, err := uc.GetTurn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.TurnInfo{Player: "white", P: 10}, turn)
	assert.Len(t, notifier.turns, 1)
}

func TestObserveSingleWinner(t *testing.T) {
	uc, store, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.PlaceStone(ctx, id, i, 0)
		require.NoError(t, err)
		_, err = uc.PlaceStone(ctx, id, i*3, 6)
		require.NoError(t, err)
	}

	observed, err := uc.Observe(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, *observed.Cells[0][0])
	assert.Equal(t, 0, *observed.Cells[6][0])
	assert.Nil(t, observed.Cells[1][0])

	assert.Equal(t, []game.WinnerInfo{{Winner: "black"}}, notifier.winners)
	assert.Equal(t, game.TurnInfo{Player: "white", P: 30}, notifier.turns[len(notifier.turns)-1])

	status, err := uc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusResponse{Status: statuses.StatusOver, Winner: "black"}, status)
	assert.Equal(t, "black", store.snaps[id].Winner)

	_, err = uc.PlaceStone(ctx, id, 10, 10)
	assert.ErrorIs(t, err, errs.ErrGameAlreadyOver)

	// observing a finished game announces nothing new
	_, err = uc.Observe(ctx, id)
	require.NoError(t, err)
	assert.Len(t, notifier.winners, 1)
}

func TestObserveTieBreak(t *testing.T) {
	uc, _, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.PlaceStone(ctx, id, i, 0)
		require.NoError(t, err)
		_, err = uc.PlaceStone(ctx, id, i, 2)
		require.NoError(t, err)
	}
	// white is on turn when observing
	_, err := uc.PlaceStone(ctx, id, 17, 17)
	require.NoError(t, err)

	_, err = uc.Observe(ctx, id)
	require.NoError(t, err)

	turn, err := uc.GetTurn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "black", turn.Player)
	assert.Equal(t, []game.WinnerInfo{{Winner: "white"}}, notifier.winners)
}

func TestObserveNoWinner(t *testing.T) {
	uc, _, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	_, err := uc.PlaceStone(ctx, id, 0, 0)
	require.NoError(t, err)
	_, err = uc.Observe(ctx, id)
	require.NoError(t, err)

	assert.Empty(t, notifier.winners)
	status, err := uc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusInProgress, status.Status)
}

func TestReset(t *testing.T) {
	uc, store, _, id := newTestUseCase(t, 50)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.PlaceStone(ctx, id, i, 0)
		require.NoError(t, err)
		_, err = uc.PlaceStone(ctx, id, i, 9)
		require.NoError(t, err)
	}
	_, err := uc.Observe(ctx, id)
	require.NoError(t, err)

	turn, err := uc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, game.TurnInfo{Player: "black", P: 70}, turn)

	board, err := uc.GetBoard(ctx, id)
	require.NoError(t, err)
	for _, row := range board.Cells {
		for _, cell := range row {
			assert.Nil(t, cell)
		}
	}
	assert.Empty(t, store.snaps[id].Stones)
	assert.Equal(t, statuses.StatusInProgress, store.snaps[id].Status)

	p, err := uc.PlaceStone(ctx, id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 70, p)
}

func TestRestoreFromStore(t *testing.T) {
	uc, store, _, id := newTestUseCase(t, 50)
	ctx := context.Background()

	_, err := uc.PlaceStone(ctx, id, 3, 3)
	require.NoError(t, err)

	fresh := NewGameUseCase(zap.NewNop().Sugar(), store, nil, WithRoller(fixed(50)))
	board, err := fresh.GetBoard(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 70, *board.Cells[3][3])

	turn, err := fresh.GetTurn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "white", turn.Player)
}

func TestUnknownGame(t *testing.T) {
	uc := NewGameUseCase(zap.NewNop().Sugar(), nil, nil)
	ctx := context.Background()

	_, err := uc.GetBoard(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
	_, err = uc.PlaceStone(ctx, "missing", 0, 0)
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
	_, err = uc.Observe(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
	assert.ErrorIs(t, uc.CloseGame(ctx, "missing"), errs.ErrGameNotFound)

	withStore := NewGameUseCase(zap.NewNop().Sugar(), newMemoryStore(), nil)
	_, err = withStore.GetTurn(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
}

func TestCloseGame(t *testing.T) {
	uc, store, notifier, id := newTestUseCase(t, 50)
	ctx := context.Background()

	require.NoError(t, uc.CloseGame(ctx, id))
	assert.NotContains(t, store.snaps, id)
	assert.Equal(t, []string{id}, notifier.closed)

	_, err := uc.GetBoard(ctx, id)
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
	assert.ErrorIs(t, uc.CloseGame(ctx, id), errs.ErrGameNotFound)
}

func TestCloseGameWhileSaving(t *testing.T) {
	store := newGatedStore()
	notifier := &recordingNotifier{}
	uc := NewGameUseCase(zap.NewNop().Sugar(), store, notifier, WithRoller(fixed(50)))
	ctx := context.Background()

	id, err := uc.CreateGame(ctx)
	require.NoError(t, err)

	store.armed.Store(true)
	placed := make(chan error, 1)
	go func() {
		_, err := uc.PlaceStone(ctx, id, 0, 0)
		placed <- err
	}()
	<-store.entered

	closed := make(chan error, 1)
	go func() { closed <- uc.CloseGame(ctx, id) }()
	queued := make(chan error, 1)
	go func() {
		_, err := uc.PlaceStone(ctx, id, 1, 0)
		queued <- err
	}()
	close(store.release)

	require.NoError(t, <-placed)
	require.NoError(t, <-closed)
	if err = <-queued; err != nil {
		assert.ErrorIs(t, err, errs.ErrGameNotFound)
	}

	store.mu.Lock()
	assert.NotContains(t, store.snaps, id)
	store.mu.Unlock()

	_, err = uc.GetBoard(ctx, id)
	assert.ErrorIs(t, err, errs.ErrGameNotFound)

	// a fresh process sharing the store cannot bring the game back either
	fresh := NewGameUseCase(zap.NewNop().Sugar(), store, nil)
	_, err = fresh.GetBoard(ctx, id)
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
}

func TestCloseGameRestoresBeforeClosing(t *testing.T) {
	uc, store, _, id := newTestUseCase(t, 50)
	ctx := context.Background()

	fresh := NewGameUseCase(zap.NewNop().Sugar(), store, nil, WithRoller(fixed(50)))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fresh.GetTurn(ctx, id)
		}()
	}
	require.NoError(t, fresh.CloseGame(ctx, id))
	wg.Wait()

	_, err := fresh.GetTurn(ctx, id)
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
	assert.NotContains(t, store.snaps, id)

	// the first process still holds its own copy in memory
	_, err = uc.GetTurn(ctx, id)
	assert.NoError(t, err)
}

func TestRestoreCorruptSnapshot(t *testing.T) {
	store := newMemoryStore()
	store.snaps["bad"] = game.Snapshot{GameID: "bad", Turn: "green"}
	uc := NewGameUseCase(zap.NewNop().Sugar(), store, nil)
	ctx := context.Background()

	_, err := uc.GetBoard(ctx, "bad")
	assert.ErrorIs(t, err, errs.ErrInvalidSnapshot)

	require.NoError(t, uc.CloseGame(ctx, "bad"))
	_, err = uc.GetBoard(ctx, "bad")
	assert.ErrorIs(t, err, errs.ErrGameNotFound)
}

func TestConcurrentPlacements(t *testing.T) {
	uc, _, _, id := newTestUseCase(t, 50)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	placed := 0
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < game.BoardSize; i++ {
				// every worker races for the same row
				if _, err := uc.PlaceStone(ctx, id, i, 0); err == nil {
					mu.Lock()
					placed++
					mu.Unlock()
				}
				_, _ = uc.GetTurn(ctx, id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, game.BoardSize, placed)
	board, err := uc.GetBoard(ctx, id)
	require.NoError(t, err)
	for x := 0; x < game.BoardSize; x++ {
		assert.NotNil(t, board.Cells[0][x])
	}
	turn, err := uc.GetTurn(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "black", turn.Player)
}
