package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antics.dev/internal/sim/hex"
)

// fakeSurface is an unbounded plane with a set of walls and food piles.
type fakeSurface struct {
	walls map[hex.Coord]bool
	food  map[hex.Coord]uint32
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{walls: map[hex.Coord]bool{}, food: map[hex.Coord]uint32{}}
}

func (f *fakeSurface) Neighbor(c hex.Coord, d hex.Direction) hex.Coord { return c.Neighbor(d) }
func (f *fakeSurface) Passable(c hex.Coord) bool                       { return !f.walls[c] }

func (f *fakeSurface) TakeFood(c hex.Coord) bool {
	if f.food[c] == 0 {
		return false
	}
	f.food[c]--
	return true
}

func (f *fakeSurface) PutFood(c hex.Coord) bool {
	f.food[c]++
	return true
}

func TestAnt_TurnsCycle(t *testing.T) {
	a := NewAnt(1, origin, hex.SouthEast)
	for i := 0; i < 6; i++ {
		a.TurnLeft()
	}
	assert.Equal(t, hex.SouthEast, a.Facing)
	for i := 0; i < 6; i++ {
		a.TurnRight()
	}
	assert.Equal(t, hex.SouthEast, a.Facing)

	a.TurnLeft()
	assert.Equal(t, hex.NorthEast, a.Facing)
	a.TurnRight()
	assert.Equal(t, hex.SouthEast, a.Facing)
}

func TestAnt_Advance(t *testing.T) {
	s := newFakeSurface()
	a := NewAnt(1, origin, hex.North)

	require.True(t, a.Advance(s))
	assert.Equal(t, hex.New(1, 0, -1), a.Pos)

	s.walls[a.Pos.Neighbor(hex.North)] = true
	assert.False(t, a.Advance(s))
	assert.Equal(t, hex.New(1, 0, -1), a.Pos)
}

func TestAnt_PickupAndDrop(t *testing.T) {
	s := newFakeSurface()
	s.food[origin] = 2
	a := NewAnt(1, origin, hex.North)

	assert.False(t, a.Drop(s), "nothing carried")

	require.True(t, a.Pickup(s))
	assert.Equal(t, uint8(1), a.Food)
	assert.Equal(t, uint32(1), s.food[origin])

	require.True(t, a.Pickup(s))
	assert.False(t, a.Pickup(s), "cell is empty")
	assert.Equal(t, uint8(2), a.Food)

	require.True(t, a.Drop(s))
	assert.Equal(t, uint8(1), a.Food)
	assert.Equal(t, uint32(1), s.food[origin])
}

func TestAnt_CapacityBoundsPickup(t *testing.T) {
	s := newFakeSurface()
	s.food[origin] = 5
	a := NewAnt(1, origin, hex.North)
	a.Capacity = 1

	require.True(t, a.Pickup(s))
	assert.False(t, a.Pickup(s))
	assert.Equal(t, uint8(1), a.Food)
	assert.Equal(t, uint32(4), s.food[origin], "food is never lost to saturation")
}
