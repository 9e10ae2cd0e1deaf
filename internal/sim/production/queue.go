package production

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"rtscore.dev/internal/sim/world/kernel/model"
)

// Ticks per minute at the nominal game speed; build time is cost scaled by
// BuildSpeedPercent over this.
const ticksPerMinute = 1500

// QueueInfo configures one production queue type.
type QueueInfo struct {
	Type string `yaml:"Type"`
	// BuildSpeedPercent converts cost to build time: 40 means a 1000-credit
	// item takes 0.4 minutes.
	BuildSpeedPercent int `yaml:"BuildSpeedPercent"`
	// LowPowerSlowdown makes items progress every Nth tick while power is short.
	LowPowerSlowdown int `yaml:"LowPowerSlowdown"`
	// BuildTimeModifiers are percentages applied in order to every build time.
	BuildTimeModifiers []int `yaml:"BuildTimeModifiers,omitempty"`
}

func DefaultQueueInfo(typ string) QueueInfo {
	return QueueInfo{Type: typ, BuildSpeedPercent: 40, LowPowerSlowdown: 3}
}

func (q *QueueInfo) UnmarshalYAML(n *yaml.Node) error {
	type plain QueueInfo
	p := plain(DefaultQueueInfo(""))
	if err := n.Decode(&p); err != nil {
		return err
	}
	if p.Type == "" {
		return fmt.Errorf("production queue without type")
	}
	if p.BuildSpeedPercent < 0 || p.LowPowerSlowdown < 1 {
		return fmt.Errorf("production queue %s: bad speed or slowdown", p.Type)
	}
	for _, m := range p.BuildTimeModifiers {
		if m < 0 {
			return fmt.Errorf("production queue %s: negative build time modifier %d", p.Type, m)
		}
	}
	*q = QueueInfo(p)
	return nil
}

// OwnerLookup returns the queue's current owner. It is consulted every tick
// so ownership transfers never leave a stale player behind.
type OwnerLookup func() *model.Player

// Catalog resolves actor declarations by name.
type Catalog func(name string) (*model.ActorInfo, bool)

// Queue is a player's production line for one queue type. Only the head
// item progresses.
type Queue struct {
	Info QueueInfo

	owner     OwnerLookup
	catalog   Catalog
	produced  func(q *Queue, it *Item)
	modifiers []int

	items []*Item
}

// NewQueue starts with the modifiers declared on info.
func NewQueue(info QueueInfo, owner OwnerLookup, catalog Catalog, produced func(q *Queue, it *Item)) *Queue {
	q := &Queue{Info: info, owner: owner, catalog: catalog, produced: produced}
	for _, m := range info.BuildTimeModifiers {
		q.AddBuildTimeModifier(m)
	}
	return q
}

// AddBuildTimeModifier scales future build times by percent.
func (q *Queue) AddBuildTimeModifier(percent int) {
	q.modifiers = append(q.modifiers, percent)
}

func (q *Queue) Owner() *model.Player { return q.owner() }

func (q *Queue) CanBuild(name string) bool {
	info, ok := q.catalog(name)
	if !ok || info.Buildable == nil {
		return false
	}
	return slices.Contains(info.Buildable.Queue, q.Info.Type)
}

// BuildTime implements BuildTimer.
func (q *Queue) BuildTime(name string) int {
	info, ok := q.catalog(name)
	if !ok {
		return 0
	}
	var t int
	if info.Buildable != nil && info.Buildable.BuildDuration > 0 {
		t = info.Buildable.BuildDuration
	} else {
		t = costOf(info) * q.Info.BuildSpeedPercent * ticksPerMinute / 100000
	}
	for _, m := range q.modifiers {
		t = t * m / 100
	}
	return t
}

func costOf(info *model.ActorInfo) int {
	if info.Valued == nil {
		return 0
	}
	return info.Valued.Cost
}

// Enqueue appends a new item for name.
func (q *Queue) Enqueue(name string) (*Item, error) {
	if !q.CanBuild(name) {
		return nil, fmt.Errorf("%s cannot be built in queue %s", name, q.Info.Type)
	}
	info, _ := q.catalog(name)
	it := NewItem(name, costOf(info), q, q.Info.LowPowerSlowdown, q.complete)
	q.items = append(q.items, it)
	return it, nil
}

func (q *Queue) complete(it *Item) {
	q.remove(it)
	if q.produced != nil {
		q.produced(q, it)
	}
}

func (q *Queue) remove(it *Item) bool {
	i := slices.Index(q.items, it)
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// Tick advances the head item.
func (q *Queue) Tick() {
	if len(q.items) == 0 {
		return
	}
	q.items[0].Tick(q.owner())
}

// Current is the head item or nil.
func (q *Queue) Current() *Item {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *Queue) Items() []*Item { return slices.Clone(q.items) }

func (q *Queue) Len() int { return len(q.items) }

// Find returns the first queued item named name.
func (q *Queue) Find(name string) *Item {
	for _, it := range q.items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// Pause pauses or resumes the first item named name.
func (q *Queue) Pause(name string, paused bool) bool {
	it := q.Find(name)
	if it == nil {
		return false
	}
	it.Pause(paused)
	return true
}

// Cancel removes the last queued item named name and refunds what was spent
// on it.
func (q *Queue) Cancel(name string) bool {
	for i := len(q.items) - 1; i >= 0; i-- {
		it := q.items[i]
		if it.Name != name {
			continue
		}
		q.items = slices.Delete(q.items, i, i+1)
		if owner := q.owner(); owner != nil {
			owner.Resources.GiveCash(it.TotalCost - it.RemainingCost)
		}
		return true
	}
	return false
}

// OnOwnerChanged drops every queued item; nothing is refunded.
func (q *Queue) OnOwnerChanged() {
	q.items = nil
}
