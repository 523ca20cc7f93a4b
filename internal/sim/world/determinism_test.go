package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antics.dev/internal/sim/hex"
)

const forager = `
; wander until food, carry it home, mark the trail
search:
	CHECK_FOOD
	JNZ grab
	ADVANCE
	JNZ search
	TURN_R
	JMP search
grab:
	PICKUP
	RELEASE_PH 5
	TURN_L
	TURN_L
	TURN_L
home:
	CHECK_NEST
	JNZ unload
	ADVANCE
	JNZ home
	TURN_L
	JMP home
unload:
	DROP
	JNZ unload
	JMP search
`

func buildForagers(t *testing.T) *World {
	t.Helper()
	w := newTestWorld(t, 4, forager)
	for _, c := range hex.Spiral(origin, 1) {
		w.SetNest(c, 1)
	}
	w.AddFood(hex.New(3, 0, -3), 20)
	w.AddFood(hex.New(-2, 3, -1), 20)
	w.AddObstacle(hex.New(2, -1, -1))
	for _, d := range hex.All {
		addAnt(w, 1, origin, d)
	}
	return w
}

func TestDeterminism_SameSetupSameDigests(t *testing.T) {
	w1 := buildForagers(t)
	w2 := buildForagers(t)
	require.Equal(t, w1.Digest(), w2.Digest())

	for i := 0; i < 200; i++ {
		tick1, d1, err := w1.StepOnce()
		require.NoError(t, err)
		tick2, d2, err := w2.StepOnce()
		require.NoError(t, err)
		require.Equal(t, tick1, tick2)
		require.Equal(t, d1, d2, "tick %d", tick1)
	}
	assert.Equal(t, w1.Ants(), w2.Ants())
}

func TestDeterminism_DigestTracksState(t *testing.T) {
	w1 := buildForagers(t)
	w2 := buildForagers(t)
	w2.AddFood(origin, 1)
	assert.NotEqual(t, w1.Digest(), w2.Digest())

	w3 := buildForagers(t)
	w3.DepositPheromone(origin, Pheromone{Scent: 1, Colony: 1})
	assert.NotEqual(t, w1.Digest(), w3.Digest())
}

func TestDeterminism_FoodIsConserved(t *testing.T) {
	w := buildForagers(t)
	total := func() uint64 {
		var sum uint64
		for _, cell := range w.Cells() {
			sum += uint64(cell.Food)
		}
		for _, a := range w.Ants() {
			sum += uint64(a.Food)
		}
		return sum
	}
	want := total()
	step(t, w, 300)
	assert.Equal(t, want, total())
}
