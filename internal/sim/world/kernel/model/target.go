package model

type TargetType uint8

const (
	TargetNone TargetType = iota
	TargetActor
	TargetFrozenActor
	TargetTerrain
)

func (t TargetType) String() string {
	switch t {
	case TargetActor:
		return "Actor"
	case TargetFrozenActor:
		return "FrozenActor"
	case TargetTerrain:
		return "Terrain"
	default:
		return "None"
	}
}

// Target is what a weapon aims at.
type Target struct {
	Type   TargetType
	Actor  *Actor
	Frozen *FrozenActor
	Pos    WPos
}

var NoTarget = Target{}

func TargetFromActor(a *Actor) Target {
	if a == nil {
		return NoTarget
	}
	return Target{Type: TargetActor, Actor: a}
}

func TargetFromFrozen(f *FrozenActor) Target {
	if f == nil {
		return NoTarget
	}
	return Target{Type: TargetFrozenActor, Frozen: f}
}

func TargetFromPos(p WPos) Target { return Target{Type: TargetTerrain, Pos: p} }

func TargetFromCell(c CPos) Target { return TargetFromPos(CenterOfCell(c)) }

func (t Target) CenterPosition() WPos {
	switch t.Type {
	case TargetActor:
		return t.Actor.CenterPosition()
	case TargetFrozenActor:
		return t.Frozen.CenterPosition
	default:
		return t.Pos
	}
}

// IsValid reports whether the target still refers to something; a dead
// live actor is no longer a target.
func (t Target) IsValid() bool {
	switch t.Type {
	case TargetActor:
		return t.Actor != nil && t.Actor.IsInWorld() && !t.Actor.IsDead()
	case TargetFrozenActor:
		return t.Frozen != nil
	case TargetTerrain:
		return true
	}
	return false
}
