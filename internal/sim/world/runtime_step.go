package world

import (
	"time"

	"github.com/sirupsen/logrus"
)

// TickStats counts what the ants did during one tick, plus the food
// totals observed after it.
type TickStats struct {
	Executed      int `json:"executed"`
	Advanced      int `json:"advanced,omitempty"`
	Blocked       int `json:"blocked,omitempty"`
	PickedUp      int `json:"picked_up,omitempty"`
	PickupsFailed int `json:"pickups_failed,omitempty"`
	Dropped       int `json:"dropped,omitempty"`
	DropsFailed   int `json:"drops_failed,omitempty"`
	Deposited     int `json:"deposited,omitempty"`
	Erased        int `json:"erased,omitempty"`

	NestFood    uint64 `json:"nest_food"`
	CarriedFood uint64 `json:"carried_food"`
}

func (s *TickStats) record(o outcome) {
	s.Executed++
	switch o {
	case outAdvanced:
		s.Advanced++
	case outBlocked:
		s.Blocked++
	case outPickedUp:
		s.PickedUp++
	case outPickupFailed:
		s.PickupsFailed++
	case outDropped:
		s.Dropped++
	case outDropFailed:
		s.DropsFailed++
	case outDeposited:
		s.Deposited++
	case outErased:
		s.Erased++
	}
}

// Update advances the world by one tick: every ant, in insertion order,
// executes exactly one instruction, and each finishes before the next
// starts. An ant fetching past the end of the program halts the world; the
// ants before it in this tick have already run and the tick does not count.
func (w *World) Update() error {
	_, err := w.step()
	return err
}

// StepOnce is Update that also reports the tick just executed and the state
// digest after it. Replays and tests use it.
func (w *World) StepOnce() (tick uint64, digest string, err error) {
	entry, err := w.step()
	if err != nil {
		return w.tick.Load(), "", err
	}
	return entry.Tick, entry.Digest, nil
}

func (w *World) step() (TickLogEntry, error) {
	if w.halted != nil {
		return TickLogEntry{}, w.halted
	}
	stepStart := time.Now()
	nowTick := w.tick.Load()

	var stats TickStats
	for i, a := range w.ants {
		out, err := w.exec(i, a)
		if err != nil {
			w.halted = err
			w.log.WithFields(logrus.Fields{
				"tick":   nowTick,
				"ant":    i,
				"colony": a.Colony,
				"pc":     a.PC,
			}).WithError(err).Error("ant faulted; world halted")
			w.storeMetrics(nowTick, stats, time.Since(stepStart))
			return TickLogEntry{}, err
		}
		stats.record(out)
	}
	stats.NestFood, stats.CarriedFood = w.foodTotals()

	entry := TickLogEntry{Tick: nowTick, Digest: w.stateDigest(nowTick), Stats: stats}
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.log.WithError(err).WithField("tick", nowTick).Warn("tick log write failed")
		}
	}

	next := w.tick.Add(1)
	w.storeMetrics(next, stats, time.Since(stepStart))

	if every := w.cfg.LogEveryTicks; every > 0 && next%uint64(every) == 0 {
		w.log.WithFields(logrus.Fields{
			"tick":         next,
			"nest_food":    stats.NestFood,
			"carried_food": stats.CarriedFood,
			"advanced":     stats.Advanced,
		}).Info("progress")
	}
	return entry, nil
}

func (w *World) foodTotals() (nest, carried uint64) {
	for _, cell := range w.grid.All() {
		if cell.HasNest {
			nest += uint64(cell.Food)
		}
	}
	for _, a := range w.ants {
		carried += uint64(a.Food)
	}
	return nest, carried
}
