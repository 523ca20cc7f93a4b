package world

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Run steps the world at the configured tick rate until MaxTicks is reached
// (nil), the context ends (ctx.Err()) or an ant faults (the ExecError).
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.WithFields(logrus.Fields{
		"radius":  w.cfg.Radius,
		"ants":    len(w.ants),
		"program": len(w.program),
		"rate_hz": w.cfg.TickRateHz,
	}).Info("world running")

	for {
		if w.cfg.MaxTicks > 0 && w.tick.Load() >= w.cfg.MaxTicks {
			w.log.WithField("tick", w.tick.Load()).Info("tick budget reached")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Update(); err != nil {
				return err
			}
		}
	}
}
