package observerproto

import "rtscore.dev/internal/sim/world"

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// FromTick asks for buffered frames at or after this tick before live
	// frames. Zero replays everything still buffered.
	FromTick uint64 `json:"from_tick,omitempty"`
	// NoReplay skips buffered frames entirely.
	NoReplay bool `json:"no_replay,omitempty"`
}

// HTTP response for GET /observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`

	Players []world.PlayerStatus `json:"players"`
}

type WorldParams struct {
	TickRateHz  int    `json:"tick_rate_hz"`
	Seed        int64  `json:"seed"`
	RulesDigest string `json:"rules_digest"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Orders []world.Order `json:"orders,omitempty"`
	Events []world.Event `json:"events,omitempty"`
}

// NewTickMsg wraps a tick log entry as a TICK frame.
func NewTickMsg(e world.TickLogEntry) TickMsg {
	return TickMsg{
		Type:            "TICK",
		ProtocolVersion: Version,
		Tick:            e.Tick,
		Digest:          e.Digest,
		Orders:          e.Orders,
		Events:          e.Events,
	}
}
