package game

// Player tracks the strength of the next stone a side will place. It keeps no
// record of earlier placements.
type Player struct {
	side Side
	next Strength
}

func NewPlayer(side Side, first Strength) Player {
	return Player{side: side, next: first}
}

func newBlackPlayer() Player { return NewPlayer(Black, Weak) }

func newWhitePlayer() Player { return NewPlayer(White, Strong) }

// ConsumeStone hands out the pending stone and flips the strength of the one
// after it.
func (p *Player) ConsumeStone() Stone {
	stone := Stone{Side: p.side, Strength: p.next}
	p.next = p.next.Flip()
	return stone
}

func (p Player) NextStone() Stone {
	return Stone{Side: p.side, Strength: p.next}
}
