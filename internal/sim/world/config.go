package world

import "fmt"

type WorldConfig struct {
	ID string

	// Radius of the hex grid. Zero is a single cell.
	Radius int

	// Run loop pacing. MaxTicks == 0 runs until the context is cancelled.
	TickRateHz int
	MaxTicks   uint64

	// CarryCapacity bounds the food a single ant holds (1..MaxCarry).
	CarryCapacity int

	// LogEveryTicks emits a progress line every N ticks (0 disables).
	LogEveryTicks int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.CarryCapacity <= 0 || c.CarryCapacity > MaxCarry {
		c.CarryCapacity = MaxCarry
	}
}

func (c WorldConfig) validate() error {
	if c.Radius < 0 {
		return fmt.Errorf("radius must be >= 0, got %d", c.Radius)
	}
	if c.LogEveryTicks < 0 {
		return fmt.Errorf("log_every_ticks must be >= 0, got %d", c.LogEveryTicks)
	}
	return nil
}
