// Package tuning holds the run-time knobs that are not part of a scenario.
package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"antics.dev/internal/sim/world"
)

type Tuning struct {
	TickRateHz    int    `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	MaxTicks      uint64 `yaml:"max_ticks" json:"max_ticks"`
	CarryCapacity int    `yaml:"carry_capacity" json:"carry_capacity"`
	LogEveryTicks int    `yaml:"log_every_ticks" json:"log_every_ticks"`

	// DigestEveryTicks samples tick entries into the run index.
	DigestEveryTicks int `yaml:"digest_every_ticks" json:"digest_every_ticks"`

	Log   LogSettings   `yaml:"log" json:"log"`
	Index IndexSettings `yaml:"index" json:"index"`
}

type LogSettings struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type IndexSettings struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Queue   int    `yaml:"queue" json:"queue"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:       5,
		CarryCapacity:    world.MaxCarry,
		LogEveryTicks:    100,
		DigestEveryTicks: 1,
		Log:              LogSettings{Level: "info", Format: "text"},
		Index:            IndexSettings{Path: "index.sqlite", Queue: 4096},
	}
}

// Load reads a tuning file over Defaults. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if strings.TrimSpace(path) == "" {
		t.Normalize()
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) Normalize() {
	if t == nil {
		return
	}
	d := Defaults()
	if t.TickRateHz <= 0 {
		t.TickRateHz = d.TickRateHz
	}
	if t.CarryCapacity == 0 {
		t.CarryCapacity = d.CarryCapacity
	}
	if t.DigestEveryTicks <= 0 {
		t.DigestEveryTicks = d.DigestEveryTicks
	}
	t.Log.Level = strings.ToLower(strings.TrimSpace(t.Log.Level))
	t.Log.Format = strings.ToLower(strings.TrimSpace(t.Log.Format))
	if t.Index.Queue <= 0 {
		t.Index.Queue = d.Index.Queue
	}
	if strings.TrimSpace(t.Index.Path) == "" {
		t.Index.Path = d.Index.Path
	}
}

func (t Tuning) Validate() error {
	if t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz must be <= 1000, got %d", t.TickRateHz)
	}
	if t.CarryCapacity < 1 || t.CarryCapacity > world.MaxCarry {
		return fmt.Errorf("carry_capacity must be in [1, %d], got %d", world.MaxCarry, t.CarryCapacity)
	}
	if t.LogEveryTicks < 0 {
		return fmt.Errorf("log_every_ticks must be >= 0, got %d", t.LogEveryTicks)
	}
	switch t.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", t.Log.Format)
	}
	return nil
}

// WorldConfig projects the tuning onto a world with the given id and radius.
func (t Tuning) WorldConfig(id string, radius int) world.WorldConfig {
	return world.WorldConfig{
		ID:            id,
		Radius:        radius,
		TickRateHz:    t.TickRateHz,
		MaxTicks:      t.MaxTicks,
		CarryCapacity: t.CarryCapacity,
		LogEveryTicks: t.LogEveryTicks,
	}
}
