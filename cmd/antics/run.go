package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"antics.dev/internal/persistence/indexdb"
	persistlog "antics.dev/internal/persistence/log"
	"antics.dev/internal/sim/scenario"
	"antics.dev/internal/sim/tuning"
	"antics.dev/internal/sim/world"
)

type runConfig struct {
	ScenarioPath string
	RunID        string
	DataDir      string
	Tuning       tuning.Tuning
	MetricsEvery time.Duration
	Log          logrus.FieldLogger
}

// runDirFor is where a run's manifest, tick log and index live.
func runDirFor(dataDir, runID string) string {
	return filepath.Join(dataDir, "runs", runID)
}

// defaultRunID is the scenario name plus the UTC start second.
func defaultRunID(name string, started time.Time) string {
	if name == "" {
		name = "run"
	}
	return name + "-" + started.Format("20060102T150405Z")
}

// run drives one scenario to completion. A cancelled ctx is a clean stop.
func run(ctx context.Context, cfg runConfig) (world.WorldMetrics, error) {
	log := cfg.Log
	sc, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		return world.WorldMetrics{}, fmt.Errorf("load scenario: %w", err)
	}
	started := time.Now().UTC()
	runID := cfg.RunID
	if runID == "" {
		runID = defaultRunID(sc.Name, started)
	}

	w, err := sc.Build(cfg.Tuning.WorldConfig(runID, sc.Radius))
	if err != nil {
		return world.WorldMetrics{}, fmt.Errorf("build world: %w", err)
	}
	w.SetLogger(log)

	runDir := runDirFor(cfg.DataDir, runID)
	if err := persistlog.CheckUnused(runDir); err != nil {
		return world.WorldMetrics{}, err
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return world.WorldMetrics{}, err
	}
	scenarioAbs, err := filepath.Abs(cfg.ScenarioPath)
	if err != nil {
		return world.WorldMetrics{}, err
	}
	man := persistlog.Manifest{
		RunID:         runID,
		Scenario:      scenarioAbs,
		ProgramDigest: sc.Compiled().Digest(),
		Tuning:        cfg.Tuning,
		StartedAt:     started.Format(time.RFC3339),
	}
	if err := persistlog.WriteManifest(runDir, man); err != nil {
		return world.WorldMetrics{}, err
	}

	tickLog := persistlog.NewTickLogger(runDir)
	defer func() {
		if err := tickLog.Close(); err != nil {
			log.WithError(err).Warn("close tick log")
		}
	}()
	sinks := tee{tickLog}

	if cfg.Tuning.Index.Enabled {
		idx, err := openIndex(ctx, runDir, cfg, man, sc, log)
		if err != nil {
			return world.WorldMetrics{}, err
		}
		defer func() {
			if err := idx.Close(); err != nil {
				log.WithError(err).Warn("close index")
			}
			st := idx.Stats()
			log.WithFields(logrus.Fields{
				"written": st.Written,
				"dropped": st.Dropped,
				"failed":  st.Failed,
			}).Info("index closed")
		}()
		sinks = append(sinks, idx)
	}
	w.SetTickLogger(sinks)

	log.WithFields(logrus.Fields{
		"run":      runID,
		"scenario": cfg.ScenarioPath,
		"dir":      runDir,
		"ants":     w.AntCount(),
		"program":  man.ProgramDigest[:12],
	}).Info("run starting")

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return w.Run(runCtx)
	})
	if cfg.MetricsEvery > 0 {
		g.Go(func() error {
			reportMetrics(runCtx, w, cfg.MetricsEvery, log)
			return nil
		})
	}
	err = g.Wait()
	m := w.Metrics()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.WithField("tick", m.Tick).Info("run interrupted")
		err = nil
	}
	if flushErr := tickLog.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return m, err
}

func openIndex(ctx context.Context, runDir string, cfg runConfig, man persistlog.Manifest, sc *scenario.Scenario, log logrus.FieldLogger) (*indexdb.SQLiteIndex, error) {
	p := cfg.Tuning.Index.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(runDir, p)
	}
	idx, err := indexdb.OpenSQLite(ctx, p, indexdb.Options{
		Queue:  cfg.Tuning.Index.Queue,
		Every:  cfg.Tuning.DigestEveryTicks,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if _, err := idx.RecordProgram(ctx, sc.Compiled()); err != nil {
		_ = idx.Close()
		return nil, err
	}
	tuneJSON, _ := json.Marshal(man.Tuning)
	for k, v := range map[string]string{
		"run_id":         man.RunID,
		"scenario":       man.Scenario,
		"program_digest": man.ProgramDigest,
		"tuning":         string(tuneJSON),
		"started_at":     man.StartedAt,
	} {
		if err := idx.SetMeta(ctx, k, v); err != nil {
			_ = idx.Close()
			return nil, err
		}
	}
	return idx, nil
}

func reportMetrics(ctx context.Context, w *world.World, every time.Duration, log logrus.FieldLogger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m := w.Metrics()
			log.WithFields(logrus.Fields{
				"tick":         m.Tick,
				"step_ms":      m.StepMS,
				"nest_food":    m.LastTick.NestFood,
				"carried_food": m.LastTick.CarriedFood,
			}).Info("metrics")
		}
	}
}

// tee fans one tick entry out to several sinks, stopping at the first error.
type tee []world.TickLogger

func (t tee) WriteTick(e world.TickLogEntry) error {
	for _, s := range t {
		if err := s.WriteTick(e); err != nil {
			return err
		}
	}
	return nil
}
