package world

import "time"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from other goroutines.
type WorldMetrics struct {
	Tick   uint64  `json:"tick"`
	Ants   int     `json:"ants"`
	StepMS float64 `json:"step_ms"`

	LastTick TickStats `json:"last_tick"`

	Halted bool `json:"halted"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	m, ok := w.metrics.Load().(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) storeMetrics(tick uint64, stats TickStats, took time.Duration) {
	w.metrics.Store(WorldMetrics{
		Tick:     tick,
		Ants:     len(w.ants),
		StepMS:   float64(took.Microseconds()) / 1000.0,
		LastTick: stats,
		Halted:   w.halted != nil,
	})
}
