package world

import (
	"math"

	"antics.dev/internal/sim/hex"
)

// MaxCarry is the most food a single ant can hold.
const MaxCarry = math.MaxUint8

// Surface is the slice of the world an ant acts on directly.
type Surface interface {
	Neighbor(c hex.Coord, d hex.Direction) hex.Coord
	Passable(c hex.Coord) bool
	// TakeFood removes one unit from c, reporting whether there was one.
	TakeFood(c hex.Coord) bool
	// PutFood adds one unit to c, reporting whether the cell accepted it.
	PutFood(c hex.Coord) bool
}

// Ant is a single agent. PC and Flag are its whole execution state: the
// index of the next instruction and the numeric outcome of the last one.
type Ant struct {
	Colony   Colony        `json:"colony"`
	Pos      hex.Coord     `json:"pos"`
	Facing   hex.Direction `json:"facing"`
	Food     uint8         `json:"food"`
	Capacity uint8         `json:"capacity"`

	PC   int    `json:"pc"`
	Flag uint32 `json:"flag"`
}

func NewAnt(colony Colony, pos hex.Coord, facing hex.Direction) *Ant {
	return &Ant{Colony: colony, Pos: pos, Facing: facing, Capacity: MaxCarry}
}

func (a *Ant) TurnLeft() { a.Facing = a.Facing.Left() }

func (a *Ant) TurnRight() { a.Facing = a.Facing.Right() }

// Ahead is the coordinate the ant faces. It may lie outside the grid.
func (a *Ant) Ahead(s Surface) hex.Coord { return s.Neighbor(a.Pos, a.Facing) }

// Advance moves one step forward unless the target is off-grid or blocked.
func (a *Ant) Advance(s Surface) bool {
	next := a.Ahead(s)
	if !s.Passable(next) {
		return false
	}
	a.Pos = next
	return true
}

// Pickup takes one unit of food from the ant's cell. It fails on an empty
// cell and when the ant is already full.
func (a *Ant) Pickup(s Surface) bool {
	if a.Food >= a.Capacity {
		return false
	}
	if !s.TakeFood(a.Pos) {
		return false
	}
	a.Food++
	return true
}

// Drop leaves one unit of carried food on the ant's cell.
func (a *Ant) Drop(s Surface) bool {
	if a.Food == 0 {
		return false
	}
	if !s.PutFood(a.Pos) {
		return false
	}
	a.Food--
	return true
}
