package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int   `yaml:"tick_rate_hz"`
	Seed       int64 `yaml:"seed"`

	// DeferredActionLimit caps pending delayed actions; a schedule beyond it
	// is dropped and reported as an event.
	DeferredActionLimit int `yaml:"deferred_action_limit"`
	InboxSize           int `yaml:"inbox_size"`

	RateLimits RateLimits     `yaml:"rate_limits"`
	Observer   ObserverTuning `yaml:"observer"`
	Index      IndexTuning    `yaml:"index"`
	TickLog    TickLogTuning  `yaml:"tick_log"`
}

type RateLimits struct {
	OrderWindowTicks int `yaml:"order_window_ticks"`
	OrderMax         int `yaml:"order_max"`
}

type ObserverTuning struct {
	// SendBuffer is the per-client queue of tick frames.
	SendBuffer int `yaml:"send_buffer"`
	// KeepTicks is how many recent frames a new client receives on connect.
	KeepTicks int `yaml:"keep_ticks"`
}

// TickLogTuning sizes tick log segments. A new file starts at every multiple
// of SegmentTicks.
type TickLogTuning struct {
	SegmentTicks int `yaml:"segment_ticks"`
}

type IndexTuning struct {
	QueueSize int `yaml:"queue_size"`
	BatchSize int `yaml:"batch_size"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:     "1.0",
		TickRateHz:          25,
		Seed:                1,
		DeferredActionLimit: 1 << 16,
		InboxSize:           1024,
		RateLimits:          RateLimits{OrderWindowTicks: 25, OrderMax: 64},
		Observer:            ObserverTuning{SendBuffer: 64, KeepTicks: 50},
		Index:               IndexTuning{QueueSize: 4096, BatchSize: 128},
		TickLog:             TickLogTuning{SegmentTicks: 9000},
	}
}

// Load reads path over Defaults. Zero or missing keys keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz)
	}
	if t.DeferredActionLimit <= 0 {
		return fmt.Errorf("deferred_action_limit must be positive")
	}
	if t.RateLimits.OrderWindowTicks < 0 || t.RateLimits.OrderMax < 0 {
		return fmt.Errorf("rate_limits must not be negative")
	}
	if t.InboxSize <= 0 || t.Observer.SendBuffer <= 0 || t.Index.QueueSize <= 0 || t.Index.BatchSize <= 0 {
		return fmt.Errorf("queue sizes must be positive")
	}
	if t.TickLog.SegmentTicks <= 0 {
		return fmt.Errorf("tick_log.segment_ticks must be positive")
	}
	return nil
}
