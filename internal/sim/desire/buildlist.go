package desire

import "rtscore.dev/internal/sim/world/kernel/model"

// BuildList is an ordered list of desires.
type BuildList []Desire

// Next returns the target of the first unsatisfied desire, or "" when every
// desire is met.
func (l BuildList) Next(w World, desirer *model.Player) string {
	for i := range l {
		if !l[i].CheckSatisfied(w, desirer) {
			return l[i].Target
		}
	}
	return ""
}

// Unsatisfied returns the targets of every unmet desire in list order.
func (l BuildList) Unsatisfied(w World, desirer *model.Player) []string {
	var out []string
	for i := range l {
		if !l[i].CheckSatisfied(w, desirer) {
			out = append(out, l[i].Target)
		}
	}
	return out
}
