// Package production amortizes build cost and time over ticks.
package production

import "rtscore.dev/internal/sim/world/kernel/model"

// BuildTimer resolves the build time of an item in ticks. Values <= 0 leave
// the placeholder time of one tick in place.
type BuildTimer interface {
	BuildTime(name string) int
}

type State uint8

const (
	StatePending State = iota
	StateRunning
	StatePaused
	StateDone
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateDone:
		return "done"
	case StateCompleted:
		return "completed"
	default:
		return "pending"
	}
}

// Item is one entry of a production queue.
type Item struct {
	Name      string
	TotalCost int

	TotalTime     int
	RemainingTime int
	RemainingCost int

	Paused  bool
	Done    bool
	Started bool

	// Slowdown counts down eligible ticks while the owner is short on power.
	Slowdown int

	lowPowerSlowdown int
	timer            BuildTimer
	onComplete       func(*Item)
	completed        bool
}

// NewItem creates an item whose build time is resolved on its first tick.
func NewItem(name string, cost int, timer BuildTimer, lowPowerSlowdown int, onComplete func(*Item)) *Item {
	if lowPowerSlowdown < 1 {
		lowPowerSlowdown = 1
	}
	return &Item{
		Name:             name,
		TotalCost:        cost,
		RemainingCost:    cost,
		TotalTime:        1,
		RemainingTime:    1,
		lowPowerSlowdown: lowPowerSlowdown,
		timer:            timer,
		onComplete:       onComplete,
	}
}

func (it *Item) State() State {
	switch {
	case it.completed:
		return StateCompleted
	case it.Done:
		return StateDone
	case it.Paused:
		return StatePaused
	case it.Started:
		return StateRunning
	}
	return StatePending
}

// Completed reports whether the completion callback has fired.
func (it *Item) Completed() bool { return it.completed }

// RemainingTimeActual is the wall-clock estimate under the given power state.
func (it *Item) RemainingTimeActual(power model.PowerState) int {
	if power == model.PowerNormal {
		return it.RemainingTime
	}
	return it.RemainingTime * it.lowPowerSlowdown
}

// Pause has no effect once the item is done.
func (it *Item) Pause(paused bool) {
	if it.Done {
		return
	}
	it.Paused = paused
}

// Tick advances the item one tick against owner's resources and power.
// The completion callback fires on the tick after the counters reach zero.
func (it *Item) Tick(owner *model.Player) {
	if !it.Started {
		if it.timer != nil {
			if t := it.timer.BuildTime(it.Name); t > 0 {
				it.TotalTime = t
				it.RemainingTime = t
			}
		}
		it.Started = true
	}

	if it.Done {
		if !it.completed {
			it.completed = true
			if it.onComplete != nil {
				it.onComplete(it)
			}
		}
		return
	}

	if it.Paused || owner == nil {
		return
	}

	if owner.Power.State() != model.PowerNormal {
		it.Slowdown--
		if it.Slowdown > 0 {
			return
		}
		it.Slowdown = it.lowPowerSlowdown
	}

	cost := it.RemainingCost / it.RemainingTime
	if cost != 0 && !owner.Resources.TakeCash(cost) {
		return
	}

	it.RemainingCost -= cost
	it.RemainingTime--
	if it.RemainingTime > 0 {
		return
	}
	it.Done = true
}
