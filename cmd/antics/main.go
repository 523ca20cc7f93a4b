// Command antics runs a Formica colony scenario, writing a compressed tick
// log and an optional sqlite index under the data directory.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"antics.dev/internal/logger"
	"antics.dev/internal/sim/tuning"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "./scenarios/two_colonies.yaml", "scenario yaml")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: ./configs/tuning.yaml if present)")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		runID        = flag.String("run", "", "run id (default: scenario name plus UTC start time); an existing run dir is refused")
		maxTicks     = flag.Uint64("max_ticks", 0, "override tuning max_ticks (0 keeps tuning)")
		rateHz       = flag.Int("rate", 0, "override tuning tick_rate_hz (0 keeps tuning)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite run index")
		metricsEvery = flag.Duration("metrics_every", 10*time.Second, "metrics log interval (0 disables)")
		logLevel     = flag.String("log_level", "", "log level (default: tuning, then LOG_LEVEL)")
		logFormat    = flag.String("log_format", "", "text or json (default: tuning, then LOG_FORMAT)")
	)
	flag.Parse()

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		def := filepath.Join("configs", "tuning.yaml")
		if _, err := os.Stat(def); err == nil {
			tp = def
		}
	}
	tune, tuneErr := tuning.Load(tp)

	lvl, format := tune.Log.Level, tune.Log.Format
	if *logLevel != "" {
		lvl = *logLevel
	}
	if *logFormat != "" {
		format = *logFormat
	}
	log := logger.New(logger.Options{Level: lvl, Format: format})
	if tuneErr != nil {
		log.WithError(tuneErr).Fatal("load tuning")
	}

	if *maxTicks > 0 {
		tune.MaxTicks = *maxTicks
	}
	if *rateHz > 0 {
		tune.TickRateHz = *rateHz
	}
	if *disableDB {
		tune.Index.Enabled = false
	}
	if err := tune.Validate(); err != nil {
		log.WithError(err).Fatal("tuning")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := run(ctx, runConfig{
		ScenarioPath: *scenarioPath,
		RunID:        *runID,
		DataDir:      *dataDir,
		Tuning:       tune,
		MetricsEvery: *metricsEvery,
		Log:          log,
	})
	fields := logrus.Fields{"tick": m.Tick, "nest_food": m.LastTick.NestFood, "carried_food": m.LastTick.CarriedFood}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("run failed")
		stop()
		os.Exit(1)
	}
	log.WithFields(fields).Info("run finished")
}
