package desire

import "rtscore.dev/internal/sim/world/kernel/model"

// ConditionEnv is what Condition expressions see, e.g.
//
//	Own("powr") >= 2 && ExcessPower < 0
type ConditionEnv struct {
	ExcessPower int
	Cash        int

	world   World         `expr:"-"`
	desirer *model.Player `expr:"-"`
}

func NewConditionEnv(w World, desirer *model.Player) ConditionEnv {
	return ConditionEnv{
		ExcessPower: desirer.Power.ExcessPower(),
		Cash:        desirer.Resources.Cash + desirer.Resources.Ore,
		world:       w,
		desirer:     desirer,
	}
}

// Own counts the desirer's actors named name.
func (e ConditionEnv) Own(name string) int {
	if e.world == nil {
		return 0
	}
	return ownCount(e.world, e.desirer, name)
}

// Other counts actors named name owned by players the desirer regards with
// stance ("Enemy", "Neutral" or "Ally"). An unknown stance counts nothing.
func (e ConditionEnv) Other(name, stance string) int {
	if e.world == nil {
		return 0
	}
	s, err := model.ParseStance(stance)
	if err != nil {
		return 0
	}
	return otherCount(e.world, e.desirer, name, s)
}
