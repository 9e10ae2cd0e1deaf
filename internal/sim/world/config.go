package world

import "rtscore.dev/internal/sim/tuning"

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	// DeferredActionLimit caps pending delayed actions.
	DeferredActionLimit int
	InboxSize           int

	// Orders per player accepted within OrderWindowTicks; zero disables the limit.
	OrderWindowTicks uint64
	OrderWindowMax   int
}

// ConfigFromTuning maps the tuning file onto a world config.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                  id,
		TickRateHz:          t.TickRateHz,
		Seed:                t.Seed,
		DeferredActionLimit: t.DeferredActionLimit,
		InboxSize:           t.InboxSize,
		OrderWindowTicks:    uint64(t.RateLimits.OrderWindowTicks),
		OrderWindowMax:      t.RateLimits.OrderMax,
	}
}

func (c *WorldConfig) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 25
	}
	if c.DeferredActionLimit <= 0 {
		c.DeferredActionLimit = 1 << 16
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 1024
	}
}
