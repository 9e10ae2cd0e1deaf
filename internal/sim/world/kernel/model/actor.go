package model

type ActorID uint32

// Actor is a live simulation object. Capabilities are instantiated from the
// declared info at construction and exposed through optional accessors.
type Actor struct {
	ID   ActorID
	Info *ActorInfo

	owner *Player
	pos   WPos

	inWorld bool
	dead    bool

	targetable *Targetable
	mobile     *Mobile
	health     *Health
}

func NewActor(id ActorID, info *ActorInfo, owner *Player, pos WPos) *Actor {
	a := &Actor{ID: id, Info: info, owner: owner, pos: pos}
	if info.Targetable != nil {
		a.targetable = &Targetable{info: info.Targetable}
	}
	if info.Mobile != nil {
		a.mobile = &Mobile{Info: info.Mobile}
	}
	if info.Health != nil {
		a.health = &Health{Info: info.Health, HP: info.Health.HP}
	}
	return a
}

func (a *Actor) Name() string         { return a.Info.Name }
func (a *Actor) Owner() *Player       { return a.owner }
func (a *Actor) SetOwner(p *Player)   { a.owner = p }
func (a *Actor) CenterPosition() WPos { return a.pos }
func (a *Actor) Location() CPos       { return CellContaining(a.pos) }
func (a *Actor) IsInWorld() bool      { return a.inWorld }
func (a *Actor) IsDead() bool         { return a.dead }

// SetPosition moves the actor and reports whether it changed cell.
func (a *Actor) SetPosition(p WPos) bool {
	before := CellContaining(a.pos)
	a.pos = p
	return CellContaining(p) != before
}

func (a *Actor) SetInWorld(v bool) { a.inWorld = v }
func (a *Actor) MarkDead()         { a.dead = true }

func (a *Actor) Targetable() (*Targetable, bool) { return a.targetable, a.targetable != nil }
func (a *Actor) Mobile() (*Mobile, bool)         { return a.mobile, a.mobile != nil }
func (a *Actor) Health() (*Health, bool)         { return a.health, a.health != nil }

// Targetable is the live targetable capability. It reads its tags from the
// declared info so live and frozen lookups always agree.
type Targetable struct {
	info *TargetableInfo
}

func (t *Targetable) TargetTypes() []string { return t.info.TargetTypes }

type Mobile struct {
	Info *MobileInfo

	Moving      bool
	Destination WPos
}

type Health struct {
	Info *HealthInfo
	HP   int
}

// FrozenActor is a historical snapshot of an actor that is no longer visible.
type FrozenActor struct {
	ID             ActorID
	Info           *ActorInfo
	Owner          *Player
	CenterPosition WPos

	// Actor is the live actor the snapshot was taken from; it may be dead.
	Actor *Actor
}

func Freeze(a *Actor) *FrozenActor {
	return &FrozenActor{
		ID:             a.ID,
		Info:           a.Info,
		Owner:          a.owner,
		CenterPosition: a.pos,
		Actor:          a,
	}
}

// TargetTypes reads the declared info of the snapshot.
func (f *FrozenActor) TargetTypes() ([]string, bool) {
	if f.Info == nil || f.Info.Targetable == nil {
		return nil, false
	}
	return f.Info.Targetable.TargetTypes, true
}
