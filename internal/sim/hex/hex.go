package hex

import (
	"fmt"
	"strings"
)

// Coord is a cube coordinate on a hex grid. Valid coordinates satisfy R+S+Q == 0.
type Coord struct {
	R int `json:"r" yaml:"r"`
	S int `json:"s" yaml:"s"`
	Q int `json:"q" yaml:"q"`
}

// New does not check the zero-sum invariant; offset arithmetic preserves it.
func New(r, s, q int) Coord { return Coord{R: r, S: s, Q: q} }

func (c Coord) Valid() bool { return c.R+c.S+c.Q == 0 }

func (c Coord) Add(o Coord) Coord {
	return Coord{R: c.R + o.R, S: c.S + o.S, Q: c.Q + o.Q}
}

func (c Coord) Scale(n int) Coord {
	return Coord{R: c.R * n, S: c.S * n, Q: c.Q * n}
}

func (c Coord) Neighbor(d Direction) Coord { return c.Add(d.Offset()) }

// Walk moves n steps along the axis of d. Negative n walks the opposite way.
func (c Coord) Walk(d Direction, n int) Coord { return c.Add(d.Offset().Scale(n)) }

// MoveX shifts along the NorthEast axis, keeping R fixed.
func (c Coord) MoveX(dr int) Coord { return c.Walk(NorthEast, dr) }

// Length is the hex distance from the origin.
func (c Coord) Length() int {
	return max(abs(c.R), abs(c.S), abs(c.Q))
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d,%d)", c.R, c.S, c.Q) }

func Distance(a, b Coord) int {
	return Coord{R: a.R - b.R, S: a.S - b.S, Q: a.Q - b.Q}.Length()
}

// Spiral returns every coordinate within radius of center, center first,
// then ring by ring. Negative radius yields nil.
func Spiral(center Coord, radius int) []Coord {
	if radius < 0 {
		return nil
	}
	out := make([]Coord, 0, 3*radius*radius+3*radius+1)
	out = append(out, center)
	for k := 1; k <= radius; k++ {
		c := center.Walk(SouthWest, k)
		for _, d := range All {
			for i := 0; i < k; i++ {
				out = append(out, c)
				c = c.Neighbor(d)
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the six hex facings, numbered clockwise from North.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest

	numDirections = 6
)

// All lists the directions in clockwise order.
var All = [numDirections]Direction{North, NorthEast, SouthEast, South, SouthWest, NorthWest}

var offsets = [numDirections]Coord{
	North:     {R: 1, S: 0, Q: -1},
	NorthEast: {R: 0, S: 1, Q: -1},
	SouthEast: {R: -1, S: 1, Q: 0},
	South:     {R: -1, S: 0, Q: 1},
	SouthWest: {R: 0, S: -1, Q: 1},
	NorthWest: {R: 1, S: -1, Q: 0},
}

var names = [numDirections]string{"N", "NE", "SE", "S", "SW", "NW"}

func (d Direction) Valid() bool { return d < numDirections }

// Offset returns the unit step for d. Out-of-range values wrap.
func (d Direction) Offset() Coord { return offsets[d%numDirections] }

func (d Direction) Right() Direction { return (d%numDirections + 1) % numDirections }

func (d Direction) Left() Direction { return (d%numDirections + numDirections - 1) % numDirections }

func (d Direction) Opposite() Direction { return (d%numDirections + 3) % numDirections }

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return names[d]
}

// ParseDirection accepts the short names (N, NE, ...) and the long ones
// (north, northeast, ...), case-insensitively.
func ParseDirection(s string) (Direction, error) {
	key := strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
	switch key {
	case "N", "NORTH":
		return North, nil
	case "NE", "NORTHEAST":
		return NorthEast, nil
	case "SE", "SOUTHEAST":
		return SouthEast, nil
	case "S", "SOUTH":
		return South, nil
	case "SW", "SOUTHWEST":
		return SouthWest, nil
	case "NW", "NORTHWEST":
		return NorthWest, nil
	}
	return North, fmt.Errorf("unknown direction %q", s)
}
