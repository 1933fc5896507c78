package game

import (
	"time"

	"golang.org/x/exp/rand"

	errs "quantum_gomoku/internal/errors"
)

// Roller draws the per-stone random numbers used by Observe.
type Roller interface {
	Intn(n int) int
}

func NewRoller() Roller {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}

// Game is one quantum gomoku game. It is not safe for concurrent use; callers
// serialise access.
type Game struct {
	board    ProbabilityBoard
	observed ObservedBoard
	turn     Side
	black    Player
	white    Player
	winner   Side
	rng      Roller
}

func NewGame(rng Roller) *Game {
	if rng == nil {
		rng = NewRoller()
	}
	g := &Game{rng: rng}
	g.Reset()
	return g
}

func (g *Game) Reset() {
	g.board = ProbabilityBoard{}
	g.observed = ObservedBoard{}
	g.turn = Black
	g.black = newBlackPlayer()
	g.white = newWhitePlayer()
	g.winner = NoSide
}

func (g *Game) Board() ProbabilityBoard { return g.board }

func (g *Game) Observed() ObservedBoard { return g.observed }

func (g *Game) Turn() Side { return g.turn }

func (g *Game) Winner() (Side, bool) {
	return g.winner, g.winner != NoSide
}

func (g *Game) IsOver() bool { return g.winner != NoSide }

func (g *Game) IsValidPosition(x, y int) bool {
	return inBounds(x, y) && g.board[y][x].IsEmpty()
}

func (g *Game) player(side Side) *Player {
	if side == White {
		return &g.white
	}
	return &g.black
}

// NextResolvePercent is the black-resolve percent the side to move will place next.
func (g *Game) NextResolvePercent() int {
	return g.player(g.turn).NextStone().ResolvePercent()
}

func (g *Game) takeTurn() {
	g.turn = g.turn.Opponent()
}

func (g *Game) PlaceStone(x, y int) (Stone, error) {
	if g.IsOver() {
		return Stone{}, errs.ErrGameAlreadyOver
	}
	if !inBounds(x, y) {
		return Stone{}, &InvalidPositionError{X: x, Y: y}
	}
	if occupant := g.board[y][x]; !occupant.IsEmpty() {
		return Stone{}, &InvalidPositionError{X: x, Y: y, Occupant: occupant}
	}

	stone := g.player(g.turn).ConsumeStone()
	g.board[y][x] = stone
	g.takeTurn()

	return stone, nil
}

// Observe collapses every stone independently and keeps the result as the
// latest observed board. The probability board is left untouched.
func (g *Game) Observe() ObservedBoard {
	var observed ObservedBoard
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			stone := g.board[y][x]
			if stone.IsEmpty() {
				continue
			}
			if g.rng.Intn(100) < stone.ResolvePercent() {
				observed[y][x] = Black
			} else {
				observed[y][x] = White
			}
		}
	}

	g.takeTurn()
	g.observed = observed

	return observed
}

// Winners evaluates the latest observed board.
func (g *Game) Winners() SideSet {
	return g.observed.Winners()
}

// Conclude decides the game from the latest observed board and records the
// winner. With both sides holding a run the side that is not on turn wins,
// which is the side that called Observe.
func (g *Game) Conclude() (Side, bool) {
	if g.IsOver() {
		return g.winner, true
	}

	winner := ResolveWinner(g.Winners(), g.turn)
	if winner == NoSide {
		return NoSide, false
	}
	g.winner = winner
	return winner, true
}

// ResolveWinner applies the win policy to a set of winners given the side
// currently on turn.
func ResolveWinner(winners SideSet, turn Side) Side {
	switch len(winners) {
	case 1:
		return winners.Sorted()[0]
	case 2:
		return turn.Opponent()
	default:
		return NoSide
	}
}
