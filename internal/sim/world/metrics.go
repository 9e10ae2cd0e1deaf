package world

import "rtscore.dev/internal/sim/world/kernel/model"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Actors   int `json:"actors"`
	Players  int `json:"players"`
	Events   int `json:"events"`
	Deferred int `json:"deferred"`
	Inbox    int `json:"inbox"`

	StepMS float64 `json:"step_ms"`
	Digest string  `json:"digest"`

	PlayerStatus []PlayerStatus `json:"players_status,omitempty"`
}

// PlayerStatus is the per-player summary published after every tick.
type PlayerStatus struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Cash        int    `json:"cash"`
	Ore         int    `json:"ore"`
	ExcessPower int    `json:"excess_power"`
	PowerState  string `json:"power_state"`
	Army        int    `json:"army"`
	NextDesire  string `json:"next_desire,omitempty"`

	Production []QueueStatus `json:"production,omitempty"`
}

// QueueStatus is the head item of one non-empty production queue.
type QueueStatus struct {
	Producer model.ActorID `json:"producer"`
	Queue    string        `json:"queue"`
	Item     string        `json:"item"`
	State    string        `json:"state"`
	// RemainingTicks accounts for the owner's current power state.
	RemainingTicks int `json:"remaining_ticks"`
}

func (w *World) playerStatus() []PlayerStatus {
	out := make([]PlayerStatus, 0, len(w.players))
	for _, p := range w.players {
		if p.NonCombatant {
			continue
		}
		out = append(out, PlayerStatus{
			Index:       p.Index,
			Name:        p.Name,
			Cash:        p.Resources.Cash,
			Ore:         p.Resources.Ore,
			ExcessPower: p.Power.ExcessPower(),
			PowerState:  p.Power.State().String(),
			Army:        w.rosters[p.Index].Len(),
			NextDesire:  w.NextDesire(p.Index),
			Production:  w.queueStatus(p),
		})
	}
	return out
}

// queueStatus walks p's producers in id order, then queue type order.
func (w *World) queueStatus(p *model.Player) []QueueStatus {
	var out []QueueStatus
	power := p.Power.State()
	for _, id := range w.ids {
		if a := w.actors[id]; a == nil || a.IsDead() || a.Owner() != p {
			continue
		}
		for _, q := range w.queues[id] {
			head := q.Current()
			if head == nil {
				continue
			}
			out = append(out, QueueStatus{
				Producer:       id,
				Queue:          q.Info.Type,
				Item:           head.Name,
				State:          head.State().String(),
				RemainingTicks: head.RemainingTimeActual(power),
			})
		}
	}
	return out
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
