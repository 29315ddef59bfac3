package board

import (
	"errors"
	"slices"
)

var ErrOutOfBounds = errors.New("coordinates out of bounds")
var ErrCellOccupied = errors.New("cell already occupied")

// Role identifies who owns a placed marker. The wire protocol uses the
// string digits "1".."3" for seated players and "4" for spectators.
type Role string

const (
	RoleFirst     Role = "1"
	RoleSecond    Role = "2"
	RoleThird     Role = "3"
	RoleSpectator Role = "4"
)

func (r Role) IsPlayer() bool {
	switch r {
	case RoleFirst, RoleSecond, RoleThird:
		return true
	}
	return false
}

// Empty marks an unoccupied cell.
const Empty Role = ""

type Move struct {
	X    int
	Y    int
	Role Role
}

// Board is a size×size grid with write-once cells. Coordinates are
// 1-indexed, matching the server protocol.
type Board struct {
	size    int
	cells   []Role
	history []Move
}

func New(size int) *Board {
	return &Board{
		size:  size,
		cells: make([]Role, size*size),
	}
}

func (b *Board) Size() int { return b.size }

// InBounds reports whether (x, y) names a cell of this board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 1 && x <= b.size && y >= 1 && y <= b.size
}

// CellAt returns the occupant of (x, y), or Empty. Out-of-bounds
// coordinates read as Empty; Place is where bounds are enforced.
func (b *Board) CellAt(x, y int) Role {
	if !b.InBounds(x, y) {
		return Empty
	}
	return b.cells[(y-1)*b.size+(x-1)]
}

// Place occupies (x, y) for role. A cell never changes owner once set.
func (b *Board) Place(x, y int, role Role) error {
	if !b.InBounds(x, y) {
		return ErrOutOfBounds
	}
	i := (y-1)*b.size + (x - 1)
	if b.cells[i] != Empty {
		return ErrCellOccupied
	}
	b.cells[i] = role
	b.history = append(b.history, Move{X: x, Y: y, Role: role})
	return nil
}

// History returns the moves in placement order. Callers must not mutate
// the returned slice.
func (b *Board) History() []Move { return b.history }

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{
		size:    b.size,
		cells:   slices.Clone(b.cells),
		history: slices.Clone(b.history),
	}
}
