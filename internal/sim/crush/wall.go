package crush

import "rtscore.dev/internal/sim/world/kernel/model"

// WallBound is the upper limit on wall crush distance: three cells.
const WallBound = model.WRange(3 * model.CellSize)

type Wall struct {
	self *model.Actor
	info *model.WallInfo
}

func NewWall(self *model.Actor, info *model.WallInfo) *Wall {
	return &Wall{self: self, info: info}
}

func (w *Wall) Actor() *model.Actor { return w.self }
func (w *Wall) Bound() model.WRange { return WallBound }

func (w *Wall) CrushableBy(crushClasses []string) bool {
	return model.Intersects(w.info.CrushClasses, crushClasses)
}

func (w *Wall) WarnCrush(env Env, crusher *model.Actor) {}

func (w *Wall) OnCrush(env Env, crusher *model.Actor) {
	env.Kill(w.self, crusher)
	if w.info.CrushSound != "" {
		env.PlaySound(w.info.CrushSound, w.self.CenterPosition())
	}
}
