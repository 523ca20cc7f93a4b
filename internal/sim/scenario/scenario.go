// Package scenario loads world layouts from yaml and builds worlds from them.
//
// A scenario fixes everything that determines a run: grid radius, the shared
// program, nests, food, obstacles and ants in tick order. Two worlds built
// from the same scenario and tuning step through identical digests.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"antics.dev/internal/sim/formica"
	"antics.dev/internal/sim/hex"
)

type Scenario struct {
	Name   string `yaml:"name"`
	Radius int    `yaml:"radius"`

	// Exactly one of Program (inline source) and ProgramFile is set.
	// ProgramFile is relative to the scenario file.
	Program     string `yaml:"program"`
	ProgramFile string `yaml:"program_file"`

	Nests     []NestSpec     `yaml:"nests"`
	Food      []FoodSpec     `yaml:"food"`
	Obstacles []ObstacleSpec `yaml:"obstacles"`
	Ants      []AntSpec      `yaml:"ants"`

	compiled formica.Program
}

// NestSpec marks either a hexagon around Center or an explicit cell list.
type NestSpec struct {
	Colony int         `yaml:"colony"`
	Center *hex.Coord  `yaml:"center"`
	Radius int         `yaml:"radius"`
	Cells  []hex.Coord `yaml:"cells"`
}

// FoodSpec puts Amount units on every cell within Radius of At.
type FoodSpec struct {
	At     hex.Coord `yaml:"at"`
	Radius int       `yaml:"radius"`
	Amount uint32    `yaml:"amount"`
}

type ObstacleSpec struct {
	At     hex.Coord `yaml:"at"`
	Radius int       `yaml:"radius"`
}

// AntSpec places Count ants of one colony on a cell. An empty Facing deals
// the ants round the six directions starting at North.
type AntSpec struct {
	Colony int       `yaml:"colony"`
	At     hex.Coord `yaml:"at"`
	Facing string    `yaml:"facing"`
	Count  int       `yaml:"count"`
}

// Load reads, validates and assembles the scenario at path.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := parse(raw, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Parse is Load for in-memory documents. A program_file is resolved against
// the working directory.
func Parse(raw []byte) (*Scenario, error) {
	return parse(raw, ".")
}

func parse(raw []byte, dir string) (*Scenario, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if s.ProgramFile != "" {
		p := s.ProgramFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("program_file: %w", err)
		}
		s.Program = string(src)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	prog, err := formica.Assemble(s.Program)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	s.compiled = prog
	return &s, nil
}

// Compiled returns the assembled program.
func (s *Scenario) Compiled() formica.Program { return s.compiled }

// check covers what the schema cannot express: cube-coordinate validity,
// grid membership and direction names.
func (s *Scenario) check() error {
	inside := func(what string, c hex.Coord) error {
		if !c.Valid() {
			return fmt.Errorf("%s %v: r+s+q must be 0", what, c)
		}
		if c.Length() > s.Radius {
			return fmt.Errorf("%s %v outside radius %d", what, c, s.Radius)
		}
		return nil
	}
	for i, n := range s.Nests {
		if n.Center != nil {
			if err := inside(fmt.Sprintf("nests[%d].center", i), *n.Center); err != nil {
				return err
			}
		}
		for _, c := range n.Cells {
			if err := inside(fmt.Sprintf("nests[%d].cells", i), c); err != nil {
				return err
			}
		}
	}
	for i, f := range s.Food {
		if err := inside(fmt.Sprintf("food[%d].at", i), f.At); err != nil {
			return err
		}
	}
	for i, o := range s.Obstacles {
		if err := inside(fmt.Sprintf("obstacles[%d].at", i), o.At); err != nil {
			return err
		}
	}
	for i, a := range s.Ants {
		if err := inside(fmt.Sprintf("ants[%d].at", i), a.At); err != nil {
			return err
		}
		if strings.TrimSpace(a.Facing) != "" {
			if _, err := hex.ParseDirection(a.Facing); err != nil {
				return fmt.Errorf("ants[%d].facing: %w", i, err)
			}
		}
	}
	return nil
}
