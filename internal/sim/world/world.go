package world

import (
	"iter"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"antics.dev/internal/logger"
	"antics.dev/internal/sim/formica"
	"antics.dev/internal/sim/grid"
	"antics.dev/internal/sim/hex"
)

// World is a single-threaded simulation. It owns the grid, the ants and the
// program they all run; nothing outside it holds a mutable reference to any
// of them. All mutation must happen from one goroutine.
type World struct {
	cfg WorldConfig

	tick atomic.Uint64

	grid    *grid.Grid[Cell]
	ants    []*Ant
	program formica.Program

	// Set once an ant faults; the world refuses to step afterwards.
	halted error

	log        logrus.FieldLogger
	tickLogger TickLogger

	metrics atomic.Value
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry is one line of the tick trace.
type TickLogEntry struct {
	Tick   uint64    `json:"tick"`
	Digest string    `json:"digest"`
	Stats  TickStats `json:"stats"`
}

func New(cfg WorldConfig, program formica.Program) (*World, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:     cfg,
		grid:    grid.New[Cell](cfg.Radius),
		program: program,
		log:     logger.Discard(),
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

// SetLogger routes diagnostics; nil restores the silent default.
func (w *World) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logger.Discard()
	}
	w.log = l.WithField("world", w.cfg.ID)
}

func (w *World) ID() string { return w.cfg.ID }

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) Radius() int { return w.grid.Radius() }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Program() formica.Program { return w.program }

// Halted returns the fault that stopped the world, if any.
func (w *World) Halted() error { return w.halted }

// --- setup ---

func (w *World) AddObstacle(c hex.Coord) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.Obstacle = true
	}
}

func (w *World) AddFood(c hex.Coord, n uint32) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.AddFood(n)
	}
}

func (w *World) RemoveFood(c hex.Coord, n uint32) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.TakeFood(n)
	}
}

func (w *World) SetFood(c hex.Coord, n uint32) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.Food = n
	}
}

func (w *World) SetNest(c hex.Coord, colony Colony) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.Nest = colony
		cell.HasNest = true
	}
}

// AddAnt appends a to the tick order. There is no occupancy check; several
// ants may share a cell. Ants without a capacity get the world's.
func (w *World) AddAnt(a *Ant) {
	if a.Capacity == 0 || int(a.Capacity) > w.cfg.CarryCapacity {
		a.Capacity = uint8(w.cfg.CarryCapacity)
	}
	w.ants = append(w.ants, a)
}

// --- queries ---

func (w *World) Contains(c hex.Coord) bool { return w.grid.Contains(c) }

func (w *World) Cell(c hex.Coord) (Cell, bool) { return w.grid.Get(c) }

// Cells yields every cell in the grid.
func (w *World) Cells() iter.Seq2[hex.Coord, Cell] { return w.grid.All() }

// Views yields every cell together with the ant occupying it.
func (w *World) Views() iter.Seq[CellView] {
	return func(yield func(CellView) bool) {
		for c, cell := range w.grid.All() {
			v := CellView{Coord: c, Cell: cell}
			if a, ok := w.AntAt(c); ok {
				v.Ant = &a
			}
			if !yield(v) {
				return
			}
		}
	}
}

func (w *World) Food(c hex.Coord) uint32 {
	cell, _ := w.grid.Get(c)
	return cell.Food
}

func (w *World) IsObstacle(c hex.Coord) bool {
	cell, _ := w.grid.Get(c)
	return cell.Obstacle
}

// Passable reports whether an ant may stand on c.
func (w *World) Passable(c hex.Coord) bool {
	cell, ok := w.grid.Get(c)
	return ok && !cell.Obstacle
}

func (w *World) NestOwner(c hex.Coord) (Colony, bool) {
	cell, ok := w.grid.Get(c)
	if !ok {
		return 0, false
	}
	return cell.NestOwner()
}

// PheromoneFor returns the pheromone at c only if colony owns it.
func (w *World) PheromoneFor(c hex.Coord, colony Colony) (Pheromone, bool) {
	p, ok := w.Pheromone(c)
	if !ok || p.Colony != colony {
		return Pheromone{}, false
	}
	return p, true
}

// Pheromone reads the mark at c regardless of owner. Ants never sense
// through it; it exists for renderers.
func (w *World) Pheromone(c hex.Coord) (Pheromone, bool) {
	cell, ok := w.grid.Get(c)
	if !ok {
		return Pheromone{}, false
	}
	return cell.Mark()
}

// AntAt returns a copy of the first ant, in tick order, standing on c.
func (w *World) AntAt(c hex.Coord) (Ant, bool) {
	for _, a := range w.ants {
		if a.Pos == c {
			return *a, true
		}
	}
	return Ant{}, false
}

// Ants returns copies of every ant in tick order.
func (w *World) Ants() []Ant {
	out := make([]Ant, len(w.ants))
	for i, a := range w.ants {
		out[i] = *a
	}
	return out
}

func (w *World) AntCount() int { return len(w.ants) }

func (w *World) Neighbor(c hex.Coord, d hex.Direction) hex.Coord { return w.grid.Neighbor(c, d) }

// --- mutators ---

// DepositPheromone replaces whatever mark c carried.
func (w *World) DepositPheromone(c hex.Coord, p Pheromone) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.Pheromone = p
		cell.HasPheromone = true
	}
}

func (w *World) ErasePheromone(c hex.Coord) {
	if cell, ok := w.grid.Ref(c); ok {
		cell.Pheromone = Pheromone{}
		cell.HasPheromone = false
	}
}

// TakeFood and PutFood implement Surface.

func (w *World) TakeFood(c hex.Coord) bool {
	cell, ok := w.grid.Ref(c)
	return ok && cell.TakeFood(1) == 1
}

func (w *World) PutFood(c hex.Coord) bool {
	cell, ok := w.grid.Ref(c)
	return ok && cell.AddFood(1) == 1
}

var _ Surface = (*World)(nil)
