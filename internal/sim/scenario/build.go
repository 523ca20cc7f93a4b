package scenario

import (
	"strings"

	"antics.dev/internal/sim/hex"
	"antics.dev/internal/sim/world"
)

// Build creates a world from the scenario. Radius always comes from the
// scenario; an empty cfg.ID takes the scenario name. Area specs that reach
// past the edge of the grid are clipped.
func (s *Scenario) Build(cfg world.WorldConfig) (*world.World, error) {
	cfg.Radius = s.Radius
	if cfg.ID == "" {
		cfg.ID = s.Name
	}
	w, err := world.New(cfg, s.compiled)
	if err != nil {
		return nil, err
	}

	for _, o := range s.Obstacles {
		for _, c := range hex.Spiral(o.At, s.reach(o.At, o.Radius)) {
			w.AddObstacle(c)
		}
	}
	for _, n := range s.Nests {
		cells := n.Cells
		if n.Center != nil {
			cells = hex.Spiral(*n.Center, s.reach(*n.Center, n.Radius))
		}
		for _, c := range cells {
			w.SetNest(c, world.Colony(n.Colony))
		}
	}
	for _, f := range s.Food {
		for _, c := range hex.Spiral(f.At, s.reach(f.At, f.Radius)) {
			w.AddFood(c, f.Amount)
		}
	}
	for _, a := range s.Ants {
		count := max(a.Count, 1)
		fixed := strings.TrimSpace(a.Facing) != ""
		facing, _ := hex.ParseDirection(a.Facing)
		for i := 0; i < count; i++ {
			d := facing
			if !fixed {
				d = hex.All[i%len(hex.All)]
			}
			w.AddAnt(world.NewAnt(world.Colony(a.Colony), a.At, d))
		}
	}
	return w, nil
}

// reach bounds an area radius around at to the farthest grid cell from it.
func (s *Scenario) reach(at hex.Coord, r int) int {
	return min(r, hex.Distance(at, hex.Coord{})+s.Radius)
}
