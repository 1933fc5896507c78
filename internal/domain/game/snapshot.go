package game

import (
	"fmt"
	"time"

	errs "quantum_gomoku/internal/errors"
	"quantum_gomoku/internal/statuses"
)

// Snapshot is the stored form of the current state of one game. It is
// overwritten on every save.
type Snapshot struct {
	GameID    string         `json:"game_id" bson:"_id"`
	Status    string         `json:"status" bson:"status"`
	Turn      string         `json:"turn" bson:"turn"`
	Stones    []PlacedStone  `json:"stones" bson:"stones"`
	Observed  []ObservedCell `json:"observed" bson:"observed"`
	NextBlack string         `json:"next_black" bson:"next_black"`
	NextWhite string         `json:"next_white" bson:"next_white"`
	Winner    string         `json:"winner,omitempty" bson:"winner,omitempty"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

type PlacedStone struct {
	X        int    `json:"x" bson:"x"`
	Y        int    `json:"y" bson:"y"`
	Side     string `json:"side" bson:"side"`
	Strength string `json:"strength" bson:"strength"`
}

type ObservedCell struct {
	X    int    `json:"x" bson:"x"`
	Y    int    `json:"y" bson:"y"`
	Side string `json:"side" bson:"side"`
}

func (g *Game) Status() string {
	if g.IsOver() {
		return statuses.StatusOver
	}
	return statuses.StatusInProgress
}

func (g *Game) Snapshot(gameID string) Snapshot {
	snap := Snapshot{
		GameID:    gameID,
		Status:    g.Status(),
		Turn:      g.turn.String(),
		Stones:    []PlacedStone{},
		Observed:  []ObservedCell{},
		NextBlack: g.black.next.String(),
		NextWhite: g.white.next.String(),
		Winner:    g.winner.String(),
		UpdatedAt: time.Now().UTC(),
	}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if stone := g.board[y][x]; !stone.IsEmpty() {
				snap.Stones = append(snap.Stones, PlacedStone{
					X: x, Y: y, Side: stone.Side.String(), Strength: stone.Strength.String(),
				})
			}
			if side := g.observed[y][x]; side != NoSide {
				snap.Observed = append(snap.Observed, ObservedCell{X: x, Y: y, Side: side.String()})
			}
		}
	}
	return snap
}

// RestoreGame rebuilds a game from a snapshot. Every field is validated; a
// malformed snapshot yields ErrInvalidSnapshot.
func RestoreGame(snap Snapshot, rng Roller) (*Game, error) {
	g := NewGame(rng)

	turn, err := ParseSide(snap.Turn)
	if err != nil || turn == NoSide {
		return nil, invalidSnapshot("turn %q", snap.Turn)
	}
	g.turn = turn

	if g.black.next, err = ParseStrength(snap.NextBlack); err != nil {
		return nil, invalidSnapshot("%v", err)
	}
	if g.white.next, err = ParseStrength(snap.NextWhite); err != nil {
		return nil, invalidSnapshot("%v", err)
	}
	if g.winner, err = ParseSide(snap.Winner); err != nil {
		return nil, invalidSnapshot("%v", err)
	}

	for _, s := range snap.Stones {
		side, err := ParseSide(s.Side)
		if err != nil || side == NoSide {
			return nil, invalidSnapshot("stone side %q", s.Side)
		}
		strength, err := ParseStrength(s.Strength)
		if err != nil {
			return nil, invalidSnapshot("%v", err)
		}
		if !g.IsValidPosition(s.X, s.Y) {
			return nil, invalidSnapshot("stone at (%d, %d)", s.X, s.Y)
		}
		g.board[s.Y][s.X] = Stone{Side: side, Strength: strength}
	}

	for _, c := range snap.Observed {
		side, err := ParseSide(c.Side)
		if err != nil || side == NoSide {
			return nil, invalidSnapshot("observed side %q", c.Side)
		}
		if !inBounds(c.X, c.Y) || g.board[c.Y][c.X].IsEmpty() {
			return nil, invalidSnapshot("observed cell at (%d, %d)", c.X, c.Y)
		}
		g.observed[c.Y][c.X] = side
	}

	return g, nil
}

func invalidSnapshot(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}
