package world

import "rtscore.dev/internal/sim/world/kernel/model"

type OrderKind string

const (
	OrderMove             OrderKind = "MOVE"
	OrderAttack           OrderKind = "ATTACK"
	OrderStop             OrderKind = "STOP"
	OrderStartProduction  OrderKind = "START_PRODUCTION"
	OrderPauseProduction  OrderKind = "PAUSE_PRODUCTION"
	OrderCancelProduction OrderKind = "CANCEL_PRODUCTION"
	OrderChangeOwner      OrderKind = "CHANGE_OWNER"
)

// Order is a player command. It is applied at the tick boundary in inbox
// order and recorded verbatim in the tick log.
type Order struct {
	Kind   OrderKind     `json:"kind"`
	Player int           `json:"player"`
	Actor  model.ActorID `json:"actor,omitempty"`

	// Target actor for ATTACK; zero with Cell set attacks the ground.
	// Frozen resolves Target against the player's frozen snapshots.
	Target model.ActorID `json:"target,omitempty"`
	Frozen bool          `json:"frozen,omitempty"`
	Cell   *[2]int       `json:"cell,omitempty"`

	Queue  string `json:"queue,omitempty"`
	Item   string `json:"item,omitempty"`
	Paused bool   `json:"paused,omitempty"`

	NewOwner int `json:"new_owner,omitempty"`
}

type EventType string

const (
	EventSound             EventType = "SOUND"
	EventEffect            EventType = "EFFECT"
	EventDamage            EventType = "DAMAGE"
	EventKilled            EventType = "KILLED"
	EventDestroyed         EventType = "DESTROYED"
	EventCorpse            EventType = "CORPSE"
	EventNudged            EventType = "NUDGED"
	EventSpawned           EventType = "SPAWNED"
	EventProduced          EventType = "PRODUCED"
	EventProductionCleared EventType = "PRODUCTION_CLEARED"
	EventOwnerChanged      EventType = "OWNER_CHANGED"
	EventOrderRejected     EventType = "ORDER_REJECTED"
	EventScheduleDropped   EventType = "SCHEDULE_DROPPED"
)

// Event is an outbound effect request. The simulation never consumes them.
type Event struct {
	Tick   uint64        `json:"tick"`
	Type   EventType     `json:"type"`
	Actor  model.ActorID `json:"actor,omitempty"`
	Other  model.ActorID `json:"other,omitempty"`
	Player int           `json:"player"`
	Name   string        `json:"name,omitempty"`
	Pos    [3]int        `json:"pos"`
	Amount int           `json:"amount,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick   uint64  `json:"tick"`
	Orders []Order `json:"orders,omitempty"`
	Events []Event `json:"events,omitempty"`
	Digest string  `json:"digest"`
}

func posArray(p model.WPos) [3]int { return [3]int{p.X, p.Y, p.Z} }
