package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antics.dev/internal/sim/hex"
)

func TestExec_AdvanceSetsFlag(t *testing.T) {
	w := newTestWorld(t, 1, "ADVANCE\nADVANCE\nhalt:\nJMP halt\n")
	a := addAnt(w, 1, origin, hex.North)

	step(t, w, 1)
	assert.Equal(t, hex.New(1, 0, -1), a.Pos)
	assert.Equal(t, uint32(1), a.Flag)
	assert.Equal(t, 1, a.PC)

	step(t, w, 1)
	assert.Equal(t, hex.New(1, 0, -1), a.Pos, "edge of the grid")
	assert.Equal(t, uint32(0), a.Flag)

	step(t, w, 5)
	assert.Equal(t, 2, a.PC)
}

func TestExec_AdvanceIntoObstacle(t *testing.T) {
	w := newTestWorld(t, 2, "ADVANCE\nhalt:\nJMP halt\n")
	w.AddObstacle(hex.New(0, 0, 0).Neighbor(hex.SouthEast))
	a := addAnt(w, 1, origin, hex.SouthEast)
	a.Flag = 42

	step(t, w, 1)
	assert.Equal(t, origin, a.Pos)
	assert.Equal(t, uint32(0), a.Flag)
}

func TestExec_AntsDoNotBlockEachOther(t *testing.T) {
	w := newTestWorld(t, 2, "ADVANCE\nhalt:\nJMP halt\n")
	ahead := origin.Neighbor(hex.North)
	addAnt(w, 1, ahead, hex.South)
	a := addAnt(w, 1, origin, hex.North)
	// The first ant moves onto origin before the second leaves it.
	step(t, w, 1)
	assert.Equal(t, ahead, a.Pos)
	assert.Equal(t, uint32(1), a.Flag)
}

func TestExec_PickupAndDropFlags(t *testing.T) {
	w := newTestWorld(t, 1, "PICKUP\nPICKUP\nPICKUP\nDROP\nhalt:\nJMP halt\n")
	w.AddFood(origin, 2)
	a := addAnt(w, 1, origin, hex.North)

	step(t, w, 1)
	assert.Equal(t, uint32(1), a.Flag)
	assert.Equal(t, uint8(1), a.Food)
	assert.Equal(t, uint32(1), w.Food(origin))

	step(t, w, 2)
	assert.Equal(t, uint32(0), a.Flag, "third pickup finds nothing")
	assert.Equal(t, uint8(2), a.Food)
	assert.Equal(t, uint32(0), w.Food(origin))

	step(t, w, 1)
	assert.Equal(t, uint32(1), a.Flag)
	assert.Equal(t, uint8(1), a.Food)
	assert.Equal(t, uint32(1), w.Food(origin))
}

func TestExec_DropWithNothingCarried(t *testing.T) {
	w := newTestWorld(t, 1, "DROP\nhalt:\nJMP halt\n")
	a := addAnt(w, 1, origin, hex.North)
	a.Flag = 5
	step(t, w, 1)
	assert.Equal(t, uint32(0), a.Flag)
	assert.Equal(t, uint32(0), w.Food(origin))
}

func TestExec_CheckFood(t *testing.T) {
	w := newTestWorld(t, 1, "CHECK_FOOD\nTURN_L\nRELEASE_PH 3\nERASE_PH\nhalt:\nJMP halt\n")
	w.AddFood(origin, 7)
	a := addAnt(w, 1, origin, hex.North)

	step(t, w, 1)
	assert.Equal(t, uint32(7), a.Flag)

	// Turns and pheromone writes leave the flag alone.
	step(t, w, 3)
	assert.Equal(t, uint32(7), a.Flag)
	assert.Equal(t, hex.NorthWest, a.Facing)
	_, ok := w.Pheromone(origin)
	assert.False(t, ok)
}

func TestExec_CheckPheromoneIsColonyFiltered(t *testing.T) {
	w := newTestWorld(t, 1, "CHECK_PH\nhalt:\nJMP halt\n")
	w.DepositPheromone(origin, Pheromone{Scent: 9, Colony: 2})
	mine := addAnt(w, 2, origin, hex.North)
	theirs := addAnt(w, 1, origin, hex.North)
	theirs.Flag = 77

	step(t, w, 1)
	assert.Equal(t, uint32(9), mine.Flag)
	assert.Equal(t, uint32(0), theirs.Flag)
}

func TestExec_ReleaseOverwritesAnyColony(t *testing.T) {
	w := newTestWorld(t, 1, "RELEASE_PH 4\nhalt:\nJMP halt\n")
	w.DepositPheromone(origin, Pheromone{Scent: 9, Colony: 2})
	addAnt(w, 1, origin, hex.North)

	step(t, w, 1)
	p, ok := w.Pheromone(origin)
	require.True(t, ok)
	assert.Equal(t, Pheromone{Scent: 4, Colony: 1}, p)
}

func TestExec_EraseClearsForeignMark(t *testing.T) {
	w := newTestWorld(t, 1, "ERASE_PH\nhalt:\nJMP halt\n")
	w.DepositPheromone(origin, Pheromone{Scent: 9, Colony: 2})
	addAnt(w, 1, origin, hex.North)

	step(t, w, 1)
	_, ok := w.Pheromone(origin)
	assert.False(t, ok)
}

func TestExec_CheckNest(t *testing.T) {
	w := newTestWorld(t, 1, "CHECK_NEST\nhalt:\nJMP halt\n")
	w.SetNest(origin, 3)
	home := addAnt(w, 1, origin, hex.North)
	away := addAnt(w, 1, hex.New(0, 1, -1), hex.North)
	away.Flag = 8

	step(t, w, 1)
	assert.Equal(t, uint32(3), home.Flag, "any colony's nest is reported")
	assert.Equal(t, uint32(0), away.Flag)
}

func TestExec_ConditionalJumpsFollowFlag(t *testing.T) {
	src := `
	CHECK_FOOD
	JZ empty
	RELEASE_PH 1
idle:
	JMP idle
empty:
	RELEASE_PH 2
	JMP idle
`
	w := newTestWorld(t, 2, src)
	fed := hex.New(1, 0, -1)
	w.AddFood(fed, 1)
	addAnt(w, 1, fed, hex.North)
	addAnt(w, 2, origin, hex.North)

	step(t, w, 3)
	p, ok := w.PheromoneFor(fed, 1)
	require.True(t, ok)
	assert.Equal(t, Scent(1), p.Scent)
	p, ok = w.PheromoneFor(origin, 2)
	require.True(t, ok)
	assert.Equal(t, Scent(2), p.Scent)
}

func TestExec_JumpIfNonZero(t *testing.T) {
	src := `
	CHECK_NEST
	JNZ home
	TURN_R
home:
	TURN_L
halt:
	JMP halt
`
	w := newTestWorld(t, 1, src)
	w.SetNest(origin, 1)
	a := addAnt(w, 1, origin, hex.North)
	step(t, w, 3)
	assert.Equal(t, hex.NorthWest, a.Facing, "TURN_R was skipped")
	assert.Equal(t, 4, a.PC)
}

func TestExec_InsertionOrderDecidesContention(t *testing.T) {
	w := newTestWorld(t, 1, "PICKUP\nhalt:\nJMP halt\n")
	w.AddFood(origin, 1)
	first := addAnt(w, 1, origin, hex.North)
	second := addAnt(w, 2, origin, hex.North)

	step(t, w, 1)
	assert.Equal(t, uint8(1), first.Food)
	assert.Equal(t, uint32(1), first.Flag)
	assert.Equal(t, uint8(0), second.Food)
	assert.Equal(t, uint32(0), second.Flag)

	last := w.Metrics().LastTick
	assert.Equal(t, 2, last.Executed)
	assert.Equal(t, 1, last.PickedUp)
	assert.Equal(t, 1, last.PickupsFailed)
	assert.Equal(t, uint64(1), last.CarriedFood)
}
