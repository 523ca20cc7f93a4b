package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"antics.dev/internal/sim/formica"
	"antics.dev/internal/sim/hex"
)

var origin = hex.New(0, 0, 0)

func newTestWorld(t *testing.T, radius int, src string) *World {
	t.Helper()
	prog, err := formica.Assemble(src)
	require.NoError(t, err)
	w, err := New(WorldConfig{ID: "test", Radius: radius}, prog)
	require.NoError(t, err)
	return w
}

func addAnt(w *World, colony Colony, pos hex.Coord, facing hex.Direction) *Ant {
	a := NewAnt(colony, pos, facing)
	w.AddAnt(a)
	return a
}

func step(t *testing.T, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, w.Update(), "tick %d", w.CurrentTick())
	}
}

// captureLog keeps every tick entry in memory.
type captureLog struct{ entries []TickLogEntry }

func (c *captureLog) WriteTick(e TickLogEntry) error {
	c.entries = append(c.entries, e)
	return nil
}
