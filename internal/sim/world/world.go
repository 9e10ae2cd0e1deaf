package world

import (
	"fmt"
	"iter"
	"sort"
	"sync/atomic"

	"rtscore.dev/internal/sim/crush"
	"rtscore.dev/internal/sim/desire"
	"rtscore.dev/internal/sim/production"
	"rtscore.dev/internal/sim/roster"
	"rtscore.dev/internal/sim/rules"
	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
	"rtscore.dev/internal/sim/world/logic/random"
	"rtscore.dev/internal/sim/world/logic/rates"
)

// MovementListener is told which actors changed position this tick, in id order.
type MovementListener interface {
	PositionMovementAnnouncement(moved []*model.Actor)
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg   WorldConfig
	rules *rules.Ruleset

	tick atomic.Uint64

	m       *model.Map
	rng     *random.Shared
	players []*model.Player

	actors map[model.ActorID]*model.Actor
	// ids holds live actor ids in ascending order.
	ids    []model.ActorID
	nextID model.ActorID

	units    map[model.ActorID]*unit
	rosters  []*roster.Tracker
	queues   map[model.ActorID][]*production.Queue
	resolver *crush.Resolver
	crates   []*crush.Crate
	shroud   *shroud

	listeners []MovementListener
	deferred  deferredQueue
	removals  []model.ActorID
	events    []Event
	orderRL   []rates.Window

	inbox chan Order
	stop  chan struct{}

	tickLoggers []TickLogger
	metrics     atomic.Value
}

// unit is the per-actor combat state the world drives every tick.
type unit struct {
	armaments []*weapons.Armament
	target    model.Target
}

// New builds the starting state of sc against rs.
func New(cfg WorldConfig, rs *rules.Ruleset, sc Scenario) (*World, error) {
	cfg.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	m, err := model.NewMap(sc.Map.Width, sc.Map.Height, rs.Terrain, sc.Map.Fill)
	if err != nil {
		return nil, err
	}
	for _, ar := range sc.Map.Areas {
		for y := ar.Y; y < ar.Y+ar.H; y++ {
			for x := ar.X; x < ar.X+ar.W; x++ {
				if err := m.SetTerrain(model.CPos{X: x, Y: y}, ar.Terrain); err != nil {
					return nil, fmt.Errorf("map area: %w", err)
				}
			}
		}
	}

	w := &World{
		cfg:    cfg,
		rules:  rs,
		m:      m,
		rng:    random.New(cfg.Seed),
		actors: map[model.ActorID]*model.Actor{},
		units:  map[model.ActorID]*unit{},
		queues: map[model.ActorID][]*production.Queue{},
		inbox:  make(chan Order, cfg.InboxSize),
		stop:   make(chan struct{}),
		nextID: 1,
	}
	w.resolver = crush.NewResolver(w)
	w.listeners = append(w.listeners, w.resolver)

	byName := map[string]*model.Player{}
	for i, sp := range sc.Players {
		p := model.NewPlayer(i, sp.Name)
		p.Faction = sp.Faction
		p.NonCombatant = sp.NonCombatant
		p.Resources = model.Resources{Cash: sp.Cash, Ore: sp.Ore, OreCapacity: sp.OreCapacity}
		p.Home = model.CPos{X: sp.Home[0], Y: sp.Home[1]}
		w.players = append(w.players, p)
		w.rosters = append(w.rosters, roster.New(nil))
		byName[sp.Name] = p
	}
	w.orderRL = make([]rates.Window, len(w.players))
	w.shroud = newShroud(w)
	w.listeners = append(w.listeners, w.shroud)
	for i, sp := range sc.Players {
		for other, s := range sp.Stances {
			stance, err := model.ParseStance(s)
			if err != nil {
				return nil, fmt.Errorf("player %s: %w", sp.Name, err)
			}
			w.players[i].Stances[byName[other].Index] = stance
		}
	}

	for i, sa := range sc.Actors {
		info, ok := rs.Actor(sa.Type)
		if !ok {
			return nil, fmt.Errorf("scenario actor %d: unknown type %q", i, sa.Type)
		}
		cell := model.CPos{X: sa.Cell[0], Y: sa.Cell[1]}
		if !m.Contains(cell) {
			return nil, fmt.Errorf("scenario actor %d (%s): cell %v outside map", i, sa.Type, cell)
		}
		if _, err := w.addActor(info, byName[sa.Owner], model.CenterOfCell(cell)); err != nil {
			return nil, fmt.Errorf("scenario actor %d (%s): %w", i, sa.Type, err)
		}
	}
	w.recomputePower()
	w.shroud.update()
	// Spawns during construction are part of the starting state, not tick 0.
	w.events = w.events[:0]
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLoggers = []TickLogger{l} }

// AddTickLogger appends l; loggers are called in the order they were added.
func (w *World) AddTickLogger(l TickLogger) { w.tickLoggers = append(w.tickLoggers, l) }

// AddMovementListener registers l after the built-in crush resolver and
// shroud, which always run first and in that order.
func (w *World) AddMovementListener(l MovementListener) { w.listeners = append(w.listeners, l) }

func (w *World) Inbox() chan<- Order { return w.inbox }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int     { return w.cfg.TickRateHz }
func (w *World) CurrentTick() uint64 { return w.tick.Load() }
func (w *World) Seed() int64         { return w.cfg.Seed }
func (w *World) RulesDigest() string { return w.rules.Digest }

func (w *World) Players() []*model.Player { return w.players }

func (w *World) Player(index int) (*model.Player, bool) {
	if index < 0 || index >= len(w.players) {
		return nil, false
	}
	return w.players[index], true
}

func (w *World) Actor(id model.ActorID) (*model.Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Actors yields live in-world actors in id order.
func (w *World) Actors() iter.Seq[*model.Actor] {
	return func(yield func(*model.Actor) bool) {
		for _, id := range w.ids {
			a := w.actors[id]
			if a == nil || !a.IsInWorld() || a.IsDead() {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Roster is the tracked army of player index.
func (w *World) Roster(index int) *roster.Tracker {
	if index < 0 || index >= len(w.rosters) {
		return nil
	}
	return w.rosters[index]
}

// Queues returns the production queues hosted by producer, sorted by type.
func (w *World) Queues(producer model.ActorID) []*production.Queue { return w.queues[producer] }

// NextDesire is the first unmet build-list target for player index.
func (w *World) NextDesire(index int) string {
	p, ok := w.Player(index)
	if !ok || p.NonCombatant {
		return ""
	}
	return w.rules.Desires.Next(w, p)
}

var _ desire.World = (*World)(nil)

func (w *World) emit(ev Event) {
	ev.Tick = w.tick.Load()
	w.events = append(w.events, ev)
}

// addActor creates an in-world actor and wires its capabilities. Every rule
// lookup resolves before the actor is registered anywhere, so a failure
// leaves the world unchanged.
func (w *World) addActor(info *model.ActorInfo, owner *model.Player, pos model.WPos) (*model.Actor, error) {
	if owner == nil {
		return nil, fmt.Errorf("actor %s without owner", info.Name)
	}

	u := &unit{target: model.NoTarget}
	for _, ai := range info.Armaments {
		wi, ok := w.rules.Weapon(ai.Weapon)
		if !ok {
			return nil, fmt.Errorf("actor %s: unknown weapon %q", info.Name, ai.Weapon)
		}
		u.armaments = append(u.armaments, weapons.NewArmament(wi, ai.FirepowerPercent))
	}

	var crateActions []crush.CrateAction
	if info.Crate != nil {
		actions, err := crush.NewCrateActions(info.Crate.Actions, w.rules.Weapon)
		if err != nil {
			return nil, fmt.Errorf("crate %s: %w", info.Name, err)
		}
		crateActions = actions
	}

	var queueInfos []production.QueueInfo
	if info.Production != nil {
		types := append([]string(nil), info.Production.Produces...)
		sort.Strings(types)
		for _, typ := range types {
			qi, ok := w.rules.Queues[typ]
			if !ok {
				return nil, fmt.Errorf("actor %s: unknown queue %q", info.Name, typ)
			}
			queueInfos = append(queueInfos, qi)
		}
	}

	id := w.nextID
	w.nextID++
	a := model.NewActor(id, info, owner, pos)
	a.SetInWorld(true)
	w.actors[id] = a
	w.ids = append(w.ids, id)
	w.units[id] = u

	if !owner.NonCombatant {
		w.rosters[owner.Index].Add(a)
	}

	switch {
	case info.Wall != nil:
		w.resolver.Register(crush.NewWall(a, info.Wall))
	case info.CrushableInfantry != nil:
		w.resolver.Register(crush.NewInfantry(a, info.CrushableInfantry))
	case info.Crate != nil:
		c := crush.NewCrate(a, info.Crate, crateActions)
		w.crates = append(w.crates, c)
		w.resolver.Register(c)
	}

	if len(queueInfos) > 0 {
		qs := make([]*production.Queue, 0, len(queueInfos))
		for _, qi := range queueInfos {
			qs = append(qs, production.NewQueue(qi, a.Owner, w.rules.Actor, w.onProduced(a)))
		}
		w.queues[id] = qs
	}

	w.emit(Event{Type: EventSpawned, Actor: id, Player: owner.Index, Name: info.Name, Pos: posArray(pos)})
	return a, nil
}

// removeActor drops a from every index. It runs at frame end only.
func (w *World) removeActor(id model.ActorID) {
	a, ok := w.actors[id]
	if !ok {
		return
	}
	delete(w.actors, id)
	if i := sort.Search(len(w.ids), func(i int) bool { return w.ids[i] >= id }); i < len(w.ids) && w.ids[i] == id {
		w.ids = append(w.ids[:i], w.ids[i+1:]...)
	}
	delete(w.units, id)
	delete(w.queues, id)
	if r := w.Roster(a.Owner().Index); r != nil {
		r.Remove(a)
	}
	w.resolver.Unregister(a)
	w.shroud.forget(a)
	for i, c := range w.crates {
		if c.Actor() == a {
			w.crates = append(w.crates[:i], w.crates[i+1:]...)
			break
		}
	}
	a.SetInWorld(false)
	for _, u := range w.units {
		switch {
		case u.target.Type == model.TargetActor && u.target.Actor == a:
			u.target = model.NoTarget
		case u.target.Type == model.TargetFrozenActor && u.target.Frozen.Actor == a:
			u.target = model.NoTarget
		}
	}
}

func (w *World) scheduleRemoval(a *model.Actor) {
	for _, id := range w.removals {
		if id == a.ID {
			return
		}
	}
	w.removals = append(w.removals, a.ID)
}

// recomputePower sums provided and drained power per player from live actors.
func (w *World) recomputePower() {
	for _, p := range w.players {
		p.Power = model.Power{}
	}
	for a := range w.Actors() {
		if a.Info.Power == nil {
			continue
		}
		p := a.Owner()
		if amt := a.Info.Power.Amount; amt >= 0 {
			p.Power.Provided += amt
		} else {
			p.Power.Drained -= amt
		}
	}
}

// onProduced spawns the finished item next to producer for its current owner.
func (w *World) onProduced(producer *model.Actor) func(q *production.Queue, it *production.Item) {
	return func(q *production.Queue, it *production.Item) {
		info, ok := w.rules.Actor(it.Name)
		if !ok {
			return
		}
		owner := producer.Owner()
		cell := producer.Location()
		if pi := producer.Info.Production; pi != nil {
			cell = cell.Add(pi.Exit[0], pi.Exit[1])
		}
		cell = w.m.Clamp(cell)
		a, err := w.addActor(info, owner, model.CenterOfCell(cell))
		if err != nil {
			return
		}
		w.emit(Event{Type: EventProduced, Actor: a.ID, Other: producer.ID, Player: owner.Index, Name: it.Name, Pos: posArray(a.CenterPosition())})
	}
}
