package grid

import (
	"fmt"
	"iter"

	"antics.dev/internal/sim/hex"
)

// Grid is a hexagon of cells addressed by cube coordinates. Every coordinate
// within the radius exists from construction on; anything else is absent.
type Grid[T any] struct {
	radius int
	coords []hex.Coord
	cells  []T
	index  map[hex.Coord]int
}

// Size returns the number of cells in a grid of the given radius.
func Size(radius int) int { return 3*radius*radius + 3*radius + 1 }

func New[T any](radius int) *Grid[T] {
	if radius < 0 {
		panic(fmt.Sprintf("grid: negative radius %d", radius))
	}
	n := Size(radius)
	g := &Grid[T]{
		radius: radius,
		coords: make([]hex.Coord, 0, n),
		cells:  make([]T, n),
		index:  make(map[hex.Coord]int, n),
	}
	for r := -radius; r <= radius; r++ {
		sLo := max(-radius, -r-radius)
		sHi := min(radius, -r+radius)
		for s := sLo; s <= sHi; s++ {
			c := hex.New(r, s, -r-s)
			g.index[c] = len(g.coords)
			g.coords = append(g.coords, c)
		}
	}
	return g
}

func (g *Grid[T]) Radius() int { return g.radius }

func (g *Grid[T]) Len() int { return len(g.cells) }

func (g *Grid[T]) Contains(c hex.Coord) bool {
	_, ok := g.index[c]
	return ok
}

func (g *Grid[T]) Get(c hex.Coord) (T, bool) {
	i, ok := g.index[c]
	if !ok {
		var zero T
		return zero, false
	}
	return g.cells[i], true
}

// Ref returns a pointer into the grid's storage. It stays valid for the
// lifetime of the grid.
func (g *Grid[T]) Ref(c hex.Coord) (*T, bool) {
	i, ok := g.index[c]
	if !ok {
		return nil, false
	}
	return &g.cells[i], true
}

// Set overwrites the cell at c. Coordinates outside the grid are rejected.
func (g *Grid[T]) Set(c hex.Coord, v T) bool {
	i, ok := g.index[c]
	if !ok {
		return false
	}
	g.cells[i] = v
	return true
}

// All yields every (coordinate, cell) pair. The order is stable for a given
// radius but carries no meaning.
func (g *Grid[T]) All() iter.Seq2[hex.Coord, T] {
	return func(yield func(hex.Coord, T) bool) {
		for i, c := range g.coords {
			if !yield(c, g.cells[i]) {
				return
			}
		}
	}
}

// Neighbor does not check membership; callers query Contains separately.
func (g *Grid[T]) Neighbor(c hex.Coord, d hex.Direction) hex.Coord {
	return c.Neighbor(d)
}
