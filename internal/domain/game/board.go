package game

import "sort"

type ProbabilityBoard [BoardSize][BoardSize]Stone

type ObservedBoard [BoardSize][BoardSize]Side

// SideSet is the set of sides that hold a winning run.
type SideSet map[Side]struct{}

func (s SideSet) Has(side Side) bool {
	_, ok := s[side]
	return ok
}

// Sorted returns the members black first.
func (s SideSet) Sorted() []Side {
	sides := make([]Side, 0, len(s))
	for side := range s {
		sides = append(sides, side)
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i] < sides[j] })
	return sides
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

func (b *ProbabilityBoard) At(x, y int) Stone {
	return b[y][x]
}

func (b *ProbabilityBoard) Count() int {
	n := 0
	for y := range b {
		for x := range b[y] {
			if !b[y][x].IsEmpty() {
				n++
			}
		}
	}
	return n
}

// Percents converts the board into the grid shown to clients: nil for empty
// cells, the black-resolve percent otherwise.
func (b *ProbabilityBoard) Percents() [][]*int {
	cells := make([][]*int, BoardSize)
	for y := range b {
		cells[y] = make([]*int, BoardSize)
		for x, stone := range b[y] {
			if stone.IsEmpty() {
				continue
			}
			p := stone.ResolvePercent()
			cells[y][x] = &p
		}
	}
	return cells
}

func (b *ObservedBoard) At(x, y int) Side {
	return b[y][x]
}

// Values converts the board into the grid shown to clients: nil for empty
// cells, 100 for black and 0 for white.
func (b *ObservedBoard) Values() [][]*int {
	cells := make([][]*int, BoardSize)
	for y := range b {
		cells[y] = make([]*int, BoardSize)
		for x, side := range b[y] {
			if side == NoSide {
				continue
			}
			v := ObservedValue(side)
			cells[y][x] = &v
		}
	}
	return cells
}

const winLength = 5

var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Winners checks every occupied cell as the start of a run in each direction.
func (b *ObservedBoard) Winners() SideSet {
	winners := SideSet{}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			side := b[y][x]
			if side == NoSide {
				continue
			}
			for _, d := range directions {
				if b.runLength(x, y, d[0], d[1]) >= winLength {
					winners[side] = struct{}{}
				}
			}
		}
	}
	return winners
}

// runLength counts equal cells from (x, y) along (dx, dy), the start included.
// It stops once a winning length is reached.
func (b *ObservedBoard) runLength(x, y, dx, dy int) int {
	side := b[y][x]
	count := 1
	for count < winLength {
		x, y = x+dx, y+dy
		if !inBounds(x, y) || b[y][x] != side {
			break
		}
		count++
	}
	return count
}
