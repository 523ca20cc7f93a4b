// Command replay rebuilds a run from its manifest and checks every logged
// tick digest against a fresh simulation.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"antics.dev/internal/logger"
	persistlog "antics.dev/internal/persistence/log"
	"antics.dev/internal/sim/scenario"
	"antics.dev/internal/sim/world"
)

func main() {
	var (
		runDir   = flag.String("run_dir", "", "run directory containing manifest.json and events/")
		scenPath = flag.String("scenario", "", "scenario override (default: from manifest)")
		fromTick = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive)")
		toTick   = flag.Int64("to_tick", -1, "stop after tick (inclusive, -1 for the whole log)")
	)
	flag.Parse()

	log := logger.New(logger.Options{})
	if strings.TrimSpace(*runDir) == "" {
		fmt.Fprintln(os.Stderr, "missing -run_dir")
		os.Exit(2)
	}

	opts := options{Scenario: *scenPath, FromTick: *fromTick}
	if *toTick >= 0 {
		opts.ToTick, opts.Bounded = uint64(*toTick), true
	}
	res, err := replay(*runDir, opts)
	if err != nil {
		log.WithError(err).Error("replay failed")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"run":     res.RunID,
		"checked": res.Checked,
		"last":    res.LastTick,
	}).Info("replay ok")
}

// options selects what to verify. ToTick only applies when Bounded is set,
// so the zero value checks the whole log.
type options struct {
	Scenario string
	FromTick uint64
	ToTick   uint64
	Bounded  bool
}

type result struct {
	RunID    string
	Checked  uint64
	LastTick uint64
}

// errStop ends a scan early once ToTick is passed.
var errStop = errors.New("stop")

func replay(runDir string, opts options) (result, error) {
	if opts.Bounded && opts.ToTick < opts.FromTick {
		return result{}, fmt.Errorf("empty window: from_tick=%d to_tick=%d", opts.FromTick, opts.ToTick)
	}
	man, err := persistlog.ReadManifest(runDir)
	if err != nil {
		return result{}, fmt.Errorf("read manifest: %w", err)
	}
	res := result{RunID: man.RunID}

	sp := opts.Scenario
	if sp == "" {
		sp = man.Scenario
	}
	sc, err := scenario.Load(sp)
	if err != nil {
		return res, fmt.Errorf("load scenario: %w", err)
	}
	if got := sc.Compiled().Digest(); got != man.ProgramDigest {
		return res, fmt.Errorf("program digest mismatch: scenario=%s manifest=%s", got, man.ProgramDigest)
	}
	w, err := sc.Build(man.Tuning.WorldConfig(man.RunID, sc.Radius))
	if err != nil {
		return res, fmt.Errorf("build world: %w", err)
	}

	files, err := persistlog.ListEventFiles(persistlog.EventsDir(runDir))
	if err != nil {
		return res, fmt.Errorf("list events: %w", err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no events files found in %s", persistlog.EventsDir(runDir))
	}

	for _, path := range files {
		err := persistlog.ReadTickFile(path, func(entry world.TickLogEntry) error {
			return verify(w, entry, opts, &res, filepath.Base(path))
		})
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return res, err
		}
	}
	if res.Checked == 0 {
		return res, fmt.Errorf("no ticks checked: log ends at tick %d, from_tick=%d", res.LastTick, opts.FromTick)
	}
	return res, nil
}

func verify(w *world.World, entry world.TickLogEntry, opts options, res *result, file string) error {
	if opts.Bounded && entry.Tick > opts.ToTick {
		return errStop
	}
	if entry.Tick != w.CurrentTick() {
		return fmt.Errorf("tick mismatch: want=%d got=%d (file=%s)", w.CurrentTick(), entry.Tick, file)
	}
	tick, got, err := w.StepOnce()
	if err != nil {
		return fmt.Errorf("step tick %d: %w", entry.Tick, err)
	}
	res.LastTick = tick
	if tick >= opts.FromTick {
		res.Checked++
		if got != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, got, entry.Digest)
		}
	}
	return nil
}
