package weapons

import (
	"testing"

	"gopkg.in/yaml.v3"

	"rtscore.dev/internal/sim/world/kernel/model"
)

type scheduledFn struct {
	due int
	fn  func()
}

type damageRec struct {
	victim model.ActorID
	amount int
	tick   int
}

type fakeEnv struct {
	m   *model.Map
	now int

	pending []scheduledFn
	actors  []*model.Actor

	damage  []damageRec
	sounds  []string
	effects []string
}

func newFakeEnv(t *testing.T) *fakeEnv {
	t.Helper()
	terrain := map[string]model.TerrainInfo{
		"Clear": {Type: "Clear", TargetTypes: []string{"Ground"}},
		"Water": {Type: "Water", TargetTypes: []string{"Water"}},
		"Cliff": {Type: "Cliff", TargetTypes: []string{"Ground", "Cliff"}},
	}
	m, err := model.NewMap(8, 8, terrain, "Clear")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return &fakeEnv{m: m}
}

func (e *fakeEnv) Map() Terrain { return e.m }

func (e *fakeEnv) Schedule(delay int, fn func()) {
	e.pending = append(e.pending, scheduledFn{due: e.now + delay, fn: fn})
}

// step advances one tick and runs due actions in scheduling order.
func (e *fakeEnv) step() {
	e.now++
	rest := e.pending[:0]
	var due []scheduledFn
	for _, s := range e.pending {
		if s.due <= e.now {
			due = append(due, s)
		} else {
			rest = append(rest, s)
		}
	}
	e.pending = rest
	for _, s := range due {
		s.fn()
	}
}

func (e *fakeEnv) ActorsInRange(pos model.WPos, r model.WRange) []*model.Actor {
	var out []*model.Actor
	for _, a := range e.actors {
		if model.WRange(model.Distance(a.CenterPosition(), pos)) <= r {
			out = append(out, a)
		}
	}
	return out
}

func (e *fakeEnv) InflictDamage(victim, attacker *model.Actor, amount int) {
	e.damage = append(e.damage, damageRec{victim: victim.ID, amount: amount, tick: e.now})
}

func (e *fakeEnv) PlaySound(name string, pos model.WPos)   { e.sounds = append(e.sounds, name) }
func (e *fakeEnv) SpawnEffect(name string, pos model.WPos) { e.effects = append(e.effects, name) }

func (e *fakeEnv) spawn(id model.ActorID, info *model.ActorInfo, cell model.CPos) *model.Actor {
	a := model.NewActor(id, info, model.NewPlayer(int(id), "p"), model.CenterOfCell(cell))
	a.SetInWorld(true)
	e.actors = append(e.actors, a)
	return a
}

func mustWarhead(t *testing.T, typ, src string) Warhead {
	t.Helper()
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	wh, err := NewWarhead(typ, n.Content[0])
	if err != nil {
		t.Fatalf("NewWarhead(%s): %v", typ, err)
	}
	return wh
}

func tankInfo() *model.ActorInfo {
	return &model.ActorInfo{
		Name:       "1tnk",
		Targetable: &model.TargetableInfo{TargetTypes: []string{"Ground", "Vehicle"}},
		Health:     &model.HealthInfo{HP: 400, Armor: "heavy"},
	}
}
