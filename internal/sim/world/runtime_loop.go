package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []Order
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case o := <-w.inbox:
			pending = append(pending, o)
		case <-ticker.C:
			w.step(pending)
			pending = pending[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Submit queues o for the next tick without blocking. It reports false when
// the inbox is full.
func (w *World) Submit(o Order) bool {
	select {
	case w.inbox <- o:
		return true
	default:
		return false
	}
}

// StepOnce advances the world by a single tick using the same ordering
// semantics as Run. It is intended for deterministic replays and tests.
func (w *World) StepOnce(orders []Order) (tick uint64, digest string) {
	tick = w.tick.Load()
	return tick, w.step(orders)
}
