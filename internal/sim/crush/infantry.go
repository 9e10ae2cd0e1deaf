package crush

import "rtscore.dev/internal/sim/world/kernel/model"

type Infantry struct {
	self *model.Actor
	info *model.CrushableInfantryInfo
}

func NewInfantry(self *model.Actor, info *model.CrushableInfantryInfo) *Infantry {
	return &Infantry{self: self, info: info}
}

func (i *Infantry) Actor() *model.Actor { return i.self }
func (i *Infantry) Bound() model.WRange { return 0 }

func (i *Infantry) CrushableBy(crushClasses []string) bool {
	return model.Intersects(i.info.CrushClasses, crushClasses)
}

// WarnCrush nudges the soldier out of the way with WarnProbability percent chance.
func (i *Infantry) WarnCrush(env Env, crusher *model.Actor) {
	if env.SharedRandom().Next(100) <= i.info.WarnProbability {
		env.Nudge(i.self, crusher)
	}
}

func (i *Infantry) OnCrush(env Env, crusher *model.Actor) {
	if i.info.CrushSound != "" {
		env.PlaySound(i.info.CrushSound, crusher.CenterPosition())
	}
	env.SpawnCorpse(i.self, i.info.CorpseSequence)
	env.Kill(i.self, crusher)
}
