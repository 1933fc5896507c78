package game

import "fmt"

const BoardSize = 18

// Side is a player identity. The zero value means "no side" and marks empty
// cells on the observed board.
type Side int8

const (
	NoSide Side = iota
	Black
	White
)

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return ""
	}
}

func (s Side) Opponent() Side {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return NoSide
	}
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "black":
		return Black, nil
	case "white":
		return White, nil
	case "":
		return NoSide, nil
	default:
		return NoSide, fmt.Errorf("unknown side %q", s)
	}
}

type Strength int8

const (
	Weak Strength = iota + 1
	Strong
)

func (s Strength) String() string {
	switch s {
	case Weak:
		return "weak"
	case Strong:
		return "strong"
	default:
		return ""
	}
}

func (s Strength) Flip() Strength {
	if s == Strong {
		return Weak
	}
	return Strong
}

func ParseStrength(s string) (Strength, error) {
	switch s {
	case "weak":
		return Weak, nil
	case "strong":
		return Strong, nil
	default:
		return 0, fmt.Errorf("unknown strength %q", s)
	}
}

// Stone is a coloured stone on the probability board. The zero Stone is an
// empty cell.
type Stone struct {
	Side     Side
	Strength Strength
}

func (s Stone) IsEmpty() bool {
	return s.Side == NoSide
}

// ResolvePercent is the chance, in percent, that the stone is observed as black.
func (s Stone) ResolvePercent() int {
	return resolvePercent(s.Side, s.Strength)
}

func (s Stone) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s(%d%%)", s.Side, s.ResolvePercent())
}

func resolvePercent(side Side, strength Strength) int {
	switch side {
	case Black:
		if strength == Strong {
			return 90
		}
		return 70
	case White:
		if strength == Strong {
			return 10
		}
		return 30
	default:
		return 0
	}
}

// ObservedValue is the numeric form of a resolved cell shown to clients.
func ObservedValue(s Side) int {
	if s == Black {
		return 100
	}
	return 0
}
