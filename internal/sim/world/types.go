package world

import (
	"math"

	"antics.dev/internal/sim/hex"
)

// Colony identifies a group of ants together with its nest cells.
type Colony uint8

// Scent is the value an ant writes into a pheromone.
type Scent uint8

// Pheromone is a scent mark owned by the colony that released it.
type Pheromone struct {
	Scent  Scent  `json:"scent"`
	Colony Colony `json:"colony"`
}

// Cell is the environment state of one grid coordinate. At most one
// pheromone occupies a cell; a new deposit replaces it whatever its owner.
type Cell struct {
	Nest     Colony `json:"nest,omitempty"`
	HasNest  bool   `json:"has_nest,omitempty"`
	Obstacle bool   `json:"obstacle,omitempty"`
	Food     uint32 `json:"food,omitempty"`

	Pheromone    Pheromone `json:"pheromone,omitempty"`
	HasPheromone bool      `json:"has_pheromone,omitempty"`
}

// AddFood saturates at math.MaxUint32 and returns how much was actually added.
func (c *Cell) AddFood(n uint32) uint32 {
	room := math.MaxUint32 - c.Food
	if n > room {
		n = room
	}
	c.Food += n
	return n
}

// TakeFood removes up to n units and returns how many were removed.
func (c *Cell) TakeFood(n uint32) uint32 {
	if n > c.Food {
		n = c.Food
	}
	c.Food -= n
	return n
}

func (c Cell) NestOwner() (Colony, bool) { return c.Nest, c.HasNest }

func (c Cell) Mark() (Pheromone, bool) { return c.Pheromone, c.HasPheromone }

// CellView pairs a cell with its coordinate and the ant standing on it, if
// any. It is what renderers consume.
type CellView struct {
	Coord hex.Coord `json:"coord"`
	Cell  Cell      `json:"cell"`
	Ant   *Ant      `json:"ant,omitempty"`
}
