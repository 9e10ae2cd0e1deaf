package crush

import (
	"testing"

	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
)

type fixedRandom struct {
	values []int
	calls  []int
}

func (r *fixedRandom) Next(n int) int {
	r.calls = append(r.calls, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

type fakeEnv struct {
	m      *model.Map
	rng    *fixedRandom
	actors []*model.Actor

	killed    []model.ActorID
	destroyed []model.ActorID
	nudged    []model.ActorID
	corpses   []string
	sounds    []string
	spawned   []string
	damage    []int
	scheduled int
}

func newFakeEnv(t *testing.T) *fakeEnv {
	t.Helper()
	terrain := map[string]model.TerrainInfo{"Clear": {Type: "Clear", TargetTypes: []string{"Ground"}}}
	m, err := model.NewMap(16, 16, terrain, "Clear")
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return &fakeEnv{m: m, rng: &fixedRandom{}}
}

func (e *fakeEnv) Map() weapons.Terrain { return e.m }

func (e *fakeEnv) Schedule(delay int, fn func()) { e.scheduled++ }

func (e *fakeEnv) ActorsInRange(pos model.WPos, r model.WRange) []*model.Actor {
	var out []*model.Actor
	for _, a := range e.actors {
		if a.IsInWorld() && model.WRange(model.Distance(a.CenterPosition(), pos)) <= r {
			out = append(out, a)
		}
	}
	return out
}

func (e *fakeEnv) InflictDamage(victim, attacker *model.Actor, amount int) {
	e.damage = append(e.damage, amount)
}

func (e *fakeEnv) PlaySound(name string, pos model.WPos)   { e.sounds = append(e.sounds, name) }
func (e *fakeEnv) SpawnEffect(name string, pos model.WPos) {}
func (e *fakeEnv) SharedRandom() Random                    { return e.rng }

func (e *fakeEnv) Kill(victim, attacker *model.Actor) {
	victim.MarkDead()
	e.killed = append(e.killed, victim.ID)
}

func (e *fakeEnv) Destroy(a *model.Actor) {
	a.SetInWorld(false)
	e.destroyed = append(e.destroyed, a.ID)
}

func (e *fakeEnv) SpawnCorpse(a *model.Actor, sequence string) {
	e.corpses = append(e.corpses, sequence)
}

func (e *fakeEnv) Nudge(a, nudger *model.Actor) { e.nudged = append(e.nudged, a.ID) }

func (e *fakeEnv) SpawnActor(name string, owner *model.Player, cell model.CPos) *model.Actor {
	e.spawned = append(e.spawned, name)
	return nil
}

func (e *fakeEnv) place(id model.ActorID, info *model.ActorInfo, owner *model.Player, pos model.WPos) *model.Actor {
	a := model.NewActor(id, info, owner, pos)
	a.SetInWorld(true)
	e.actors = append(e.actors, a)
	return a
}

func tankInfo(crushes ...string) *model.ActorInfo {
	return &model.ActorInfo{
		Name:       "2tnk",
		Targetable: &model.TargetableInfo{TargetTypes: []string{"Ground"}},
		Mobile:     &model.MobileInfo{Speed: 64, Crushes: crushes, CrushRadius: 512},
	}
}

func infantryInfo() *model.ActorInfo {
	ci := model.DefaultCrushableInfantryInfo()
	return &model.ActorInfo{
		Name:              "e1",
		Targetable:        &model.TargetableInfo{TargetTypes: []string{"Ground", "Infantry"}},
		CrushableInfantry: &ci,
	}
}

func wallInfo() *model.ActorInfo {
	return &model.ActorInfo{
		Name: "sbag",
		Wall: &model.WallInfo{CrushClasses: []string{"wall"}, CrushSound: "sandbag2.aud"},
	}
}

func players() (a, b *model.Player) {
	a = model.NewPlayer(1, "a")
	b = model.NewPlayer(2, "b")
	return a, b
}

func TestAllyNeverCrushed(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	here := model.CenterOfCell(model.CPos{X: 2, Y: 2})

	cases := []struct {
		name   string
		stance model.Stance
		crush  bool
	}{
		{"ally", model.StanceAlly, false},
		{"neutral", model.StanceNeutral, true},
		{"enemy", model.StanceEnemy, true},
	}
	for i, tc := range cases {
		a.Stances[b.Index] = tc.stance
		soldier := env.place(model.ActorID(10+i), infantryInfo(), b, here)
		occ := NewInfantry(soldier, soldier.Info.CrushableInfantry)
		tank := env.place(model.ActorID(20+i), tankInfo("infantry"), a, here)
		if got := Crushes(occ, tank); got != tc.crush {
			t.Fatalf("%s: Crushes=%v want %v", tc.name, got, tc.crush)
		}
	}
}

func TestOwnUnitsNeverCrushed(t *testing.T) {
	env := newFakeEnv(t)
	a, _ := players()
	here := model.CenterOfCell(model.CPos{X: 1, Y: 1})
	soldier := env.place(1, infantryInfo(), a, here)
	tank := env.place(2, tankInfo("infantry"), a, here)

	r := NewResolver(env)
	r.Register(NewInfantry(soldier, soldier.Info.CrushableInfantry))
	r.PositionMovementAnnouncement([]*model.Actor{tank})
	if len(env.killed) != 0 {
		t.Fatalf("killed=%v", env.killed)
	}
}

func TestClassMismatch(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	here := model.CenterOfCell(model.CPos{X: 1, Y: 1})
	wall := env.place(1, wallInfo(), b, here)
	tank := env.place(2, tankInfo("infantry"), a, here)
	if Crushes(NewWall(wall, wall.Info.Wall), tank) {
		t.Fatalf("tank without wall class crushed wall")
	}
}

func TestNoCrushCapability(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	here := model.CenterOfCell(model.CPos{X: 1, Y: 1})
	soldier := env.place(1, infantryInfo(), b, here)
	jeep := env.place(2, tankInfo(), a, here)
	truck := env.place(3, &model.ActorInfo{Name: "truk"}, a, here)
	occ := NewInfantry(soldier, soldier.Info.CrushableInfantry)
	if Crushes(occ, jeep) || Crushes(occ, truck) {
		t.Fatalf("crushed without capability")
	}
}

func TestWallBound(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	wall := env.place(1, wallInfo(), b, model.CenterOfCell(model.CPos{X: 1, Y: 1}))
	info := tankInfo("wall")
	info.Mobile.CrushRadius = 8 * model.CellSize
	near := env.place(2, info, a, model.CenterOfCell(model.CPos{X: 4, Y: 1}))
	far := env.place(3, info, a, model.CenterOfCell(model.CPos{X: 5, Y: 1}))

	occ := NewWall(wall, wall.Info.Wall)
	if !Crushes(occ, near) {
		t.Fatalf("crusher at 3 cells should crush")
	}
	if Crushes(occ, far) {
		t.Fatalf("crusher past the wall bound crushed")
	}
}

func TestCrushRadius(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	soldier := env.place(1, infantryInfo(), b, model.WPos{X: 2048, Y: 2048})
	occ := NewInfantry(soldier, soldier.Info.CrushableInfantry)
	in := env.place(2, tankInfo("infantry"), a, model.WPos{X: 2048 + 512, Y: 2048})
	out := env.place(3, tankInfo("infantry"), a, model.WPos{X: 2048 + 513, Y: 2048})
	if !Crushes(occ, in) {
		t.Fatalf("crusher at radius did not crush")
	}
	if Crushes(occ, out) {
		t.Fatalf("crusher past radius crushed")
	}
}

func TestWallCrush(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	here := model.CenterOfCell(model.CPos{X: 3, Y: 3})
	wall := env.place(1, wallInfo(), b, here)
	tank := env.place(2, tankInfo("wall"), a, here)

	r := NewResolver(env)
	r.Register(NewWall(wall, wall.Info.Wall))
	r.PositionMovementAnnouncement([]*model.Actor{tank})

	if len(env.killed) != 1 || env.killed[0] != 1 {
		t.Fatalf("killed=%v", env.killed)
	}
	if len(env.sounds) != 1 || env.sounds[0] != "sandbag2.aud" {
		t.Fatalf("sounds=%v", env.sounds)
	}
}

func TestInfantryWarnThenCrush(t *testing.T) {
	cases := []struct {
		draw  int
		nudge bool
	}{
		{0, true},
		{75, true},
		{76, false},
		{99, false},
	}
	for _, tc := range cases {
		env := newFakeEnv(t)
		env.rng.values = []int{tc.draw}
		a, b := players()
		here := model.CenterOfCell(model.CPos{X: 3, Y: 3})
		soldier := env.place(1, infantryInfo(), b, here)
		tank := env.place(2, tankInfo("infantry"), a, here)

		r := NewResolver(env)
		r.Register(NewInfantry(soldier, soldier.Info.CrushableInfantry))
		r.PositionMovementAnnouncement([]*model.Actor{tank})

		if got := len(env.nudged) == 1; got != tc.nudge {
			t.Fatalf("draw %d: nudged=%v want %v", tc.draw, env.nudged, tc.nudge)
		}
		if len(env.rng.calls) != 1 || env.rng.calls[0] != 100 {
			t.Fatalf("draw %d: random calls=%v", tc.draw, env.rng.calls)
		}
		if len(env.killed) != 1 {
			t.Fatalf("draw %d: killed=%v", tc.draw, env.killed)
		}
		if len(env.corpses) != 1 || env.corpses[0] != "die-crushed" {
			t.Fatalf("draw %d: corpses=%v", tc.draw, env.corpses)
		}
		if len(env.sounds) != 1 || env.sounds[0] != "squish2.aud" {
			t.Fatalf("draw %d: sounds=%v", tc.draw, env.sounds)
		}
	}
}

func TestDeadOccupantSkipsLaterCrushers(t *testing.T) {
	env := newFakeEnv(t)
	a, b := players()
	here := model.CenterOfCell(model.CPos{X: 3, Y: 3})
	soldier := env.place(1, infantryInfo(), b, here)
	t1 := env.place(2, tankInfo("infantry"), a, here)
	t2 := env.place(3, tankInfo("infantry"), a, here)

	r := NewResolver(env)
	r.Register(NewInfantry(soldier, soldier.Info.CrushableInfantry))
	r.PositionMovementAnnouncement([]*model.Actor{t1, t2})
	if len(env.killed) != 1 {
		t.Fatalf("killed=%v", env.killed)
	}
}

func TestSelect(t *testing.T) {
	shares := []int{10, 0, 30, 60}
	cases := []struct{ n, want int }{
		{0, 0},
		{9, 0},
		{10, 2},
		{39, 2},
		{40, 3},
		{99, 3},
		{100, -1},
	}
	for _, tc := range cases {
		if got := Select(shares, tc.n); got != tc.want {
			t.Fatalf("Select(%d)=%d want %d", tc.n, got, tc.want)
		}
	}
}

type recordingAction struct {
	name   string
	shares int
	hits   *[]string
}

func (a *recordingAction) Type() string { return a.name }

func (a *recordingAction) SelectionShares(env Env, collector *model.Actor) int {
	return a.shares
}

func (a *recordingAction) Activate(env Env, crate, collector *model.Actor) {
	*a.hits = append(*a.hits, a.name)
}

func crateInfo() *model.ActorInfo {
	return &model.ActorInfo{
		Name:  "crate",
		Crate: &model.CrateInfo{Lifetime: 2, CrushClass: "crate"},
	}
}

func TestCrateWeightedSelection(t *testing.T) {
	env := newFakeEnv(t)
	env.rng.values = []int{15}
	neutral := model.NewPlayer(0, "neutral")
	neutral.NonCombatant = true
	a := model.NewPlayer(1, "a")
	here := model.CenterOfCell(model.CPos{X: 5, Y: 5})
	box := env.place(1, crateInfo(), neutral, here)
	tank := env.place(2, tankInfo("crate"), a, here)

	var hits []string
	crate := NewCrate(box, box.Info.Crate, []CrateAction{
		&recordingAction{name: "first", shares: 10, hits: &hits},
		&recordingAction{name: "none", shares: 0, hits: &hits},
		&recordingAction{name: "second", shares: 10, hits: &hits},
	})
	r := NewResolver(env)
	r.Register(crate)
	r.PositionMovementAnnouncement([]*model.Actor{tank})

	if len(env.rng.calls) != 1 || env.rng.calls[0] != 20 {
		t.Fatalf("random calls=%v want [20]", env.rng.calls)
	}
	if len(hits) != 1 || hits[0] != "second" {
		t.Fatalf("hits=%v", hits)
	}
	if !crate.Collected() || len(env.destroyed) != 1 {
		t.Fatalf("collected=%v destroyed=%v", crate.Collected(), env.destroyed)
	}
}

func TestCrateOneShot(t *testing.T) {
	env := newFakeEnv(t)
	a := model.NewPlayer(1, "a")
	neutral := model.NewPlayer(0, "neutral")
	here := model.CenterOfCell(model.CPos{X: 5, Y: 5})
	box := env.place(1, crateInfo(), neutral, here)
	tank := env.place(2, tankInfo("crate"), a, here)

	var hits []string
	crate := NewCrate(box, box.Info.Crate, []CrateAction{&recordingAction{name: "cash", shares: 1, hits: &hits}})
	crate.OnCrush(env, tank)
	crate.OnCrush(env, tank)
	if len(hits) != 1 || len(env.destroyed) != 1 {
		t.Fatalf("hits=%v destroyed=%v", hits, env.destroyed)
	}
}

func TestCrateGiveCashAndUnit(t *testing.T) {
	env := newFakeEnv(t)
	a := model.NewPlayer(1, "a")
	neutral := model.NewPlayer(0, "neutral")
	here := model.CenterOfCell(model.CPos{X: 5, Y: 5})
	tank := env.place(2, tankInfo("crate"), a, here)

	actions, err := NewCrateActions([]model.CrateActionInfo{
		{Type: "GiveCash", SelectionShares: 50, Amount: 500},
		{Type: "GiveUnit", SelectionShares: 50, Unit: "1tnk"},
	}, nil)
	if err != nil {
		t.Fatalf("NewCrateActions: %v", err)
	}

	box := env.place(1, crateInfo(), neutral, here)
	NewCrate(box, box.Info.Crate, actions).OnCrush(env, tank)
	if a.Resources.Cash != 500 {
		t.Fatalf("cash=%d want 500", a.Resources.Cash)
	}

	env.rng.values = []int{50}
	box2 := env.place(3, crateInfo(), neutral, here)
	NewCrate(box2, box2.Info.Crate, actions).OnCrush(env, tank)
	if len(env.spawned) != 1 || env.spawned[0] != "1tnk" {
		t.Fatalf("spawned=%v", env.spawned)
	}
}

func TestCrateExplode(t *testing.T) {
	env := newFakeEnv(t)
	a := model.NewPlayer(1, "a")
	neutral := model.NewPlayer(0, "neutral")
	here := model.CenterOfCell(model.CPos{X: 5, Y: 5})
	tankI := tankInfo("crate")
	tankI.Health = &model.HealthInfo{HP: 100}
	tank := env.place(2, tankI, a, here)

	w := weapons.DefaultWeaponInfo("crateboom")
	w.Warheads = []weapons.Warhead{&weapons.DamageWarhead{
		WarheadBase: weapons.WarheadBase{ValidTargets: []string{"Ground"}},
		Damage:      40,
		Spread:      512,
	}}
	lookup := func(name string) (*weapons.WeaponInfo, bool) {
		if name == "crateboom" {
			return &w, true
		}
		return nil, false
	}
	if _, err := NewCrateActions([]model.CrateActionInfo{{Type: "Explode", Weapon: "nope"}}, lookup); err == nil {
		t.Fatalf("expected unknown weapon error")
	}
	actions, err := NewCrateActions([]model.CrateActionInfo{{Type: "Explode", SelectionShares: 10, Weapon: "crateboom"}}, lookup)
	if err != nil {
		t.Fatalf("NewCrateActions: %v", err)
	}
	box := env.place(1, crateInfo(), neutral, here)
	NewCrate(box, box.Info.Crate, actions).OnCrush(env, tank)
	if len(env.damage) != 1 || env.damage[0] != 40 {
		t.Fatalf("damage=%v", env.damage)
	}
}

func TestCrateLifetime(t *testing.T) {
	env := newFakeEnv(t)
	neutral := model.NewPlayer(0, "neutral")
	box := env.place(1, crateInfo(), neutral, model.WPos{})
	crate := NewCrate(box, box.Info.Crate, nil)
	for i := 0; i < 2*TicksPerSecond-1; i++ {
		crate.Tick(env)
	}
	if len(env.destroyed) != 0 {
		t.Fatalf("destroyed early at tick %d", crate.Ticks())
	}
	crate.Tick(env)
	if len(env.destroyed) != 1 {
		t.Fatalf("not destroyed after lifetime")
	}
}

func TestUnknownCrateAction(t *testing.T) {
	if _, err := NewCrateActions([]model.CrateActionInfo{{Type: "Reveal"}}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
