package game

import (
	"fmt"

	errs "quantum_gomoku/internal/errors"
)

// InvalidPositionError is returned for placements out of bounds or onto an
// occupied cell. Occupant is the empty Stone when the position is out of bounds.
type InvalidPositionError struct {
	X, Y     int
	Occupant Stone
}

func (e *InvalidPositionError) Error() string {
	if e.Occupant.IsEmpty() {
		return fmt.Sprintf("invalid position (%d, %d): out of board", e.X, e.Y)
	}
	return fmt.Sprintf("invalid position (%d, %d): occupied by %s", e.X, e.Y, e.Occupant.Side)
}

func (e *InvalidPositionError) Unwrap() error {
	return errs.ErrInvalidPosition
}
