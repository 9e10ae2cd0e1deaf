package model

import "gopkg.in/yaml.v3"

// ActorInfo is the immutable declaration of an actor type. A nil capability
// pointer means the type does not have that capability.
type ActorInfo struct {
	Name string `yaml:"-"`

	Targetable *TargetableInfo `yaml:"Targetable,omitempty"`
	Mobile     *MobileInfo     `yaml:"Mobile,omitempty"`
	Health     *HealthInfo     `yaml:"Health,omitempty"`
	Power      *PowerInfo      `yaml:"Power,omitempty"`
	Valued     *ValuedInfo     `yaml:"Valued,omitempty"`
	Buildable  *BuildableInfo  `yaml:"Buildable,omitempty"`
	Production *ProductionInfo `yaml:"Production,omitempty"`

	RevealsShroud *RevealsShroudInfo `yaml:"RevealsShroud,omitempty"`

	Wall              *WallInfo              `yaml:"Wall,omitempty"`
	CrushableInfantry *CrushableInfantryInfo `yaml:"CrushableInfantry,omitempty"`
	Crate             *CrateInfo             `yaml:"Crate,omitempty"`

	Armaments []ArmamentInfo `yaml:"Armaments,omitempty"`
}

type TargetableInfo struct {
	TargetTypes []string `yaml:"TargetTypes"`
}

type MobileInfo struct {
	// Speed in world units per tick.
	Speed       int      `yaml:"Speed"`
	Crushes     []string `yaml:"Crushes,omitempty"`
	CrushRadius WRange   `yaml:"CrushRadius"`
}

// CanCrush reports whether the mobile declares a crush capability at all.
func (m *MobileInfo) CanCrush() bool {
	return m != nil && len(m.Crushes) > 0 && m.CrushRadius > 0
}

func (m *MobileInfo) UnmarshalYAML(n *yaml.Node) error {
	type plain MobileInfo
	p := plain{Speed: 64, CrushRadius: 512}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*m = MobileInfo(p)
	return nil
}

type HealthInfo struct {
	HP    int    `yaml:"HP"`
	Armor string `yaml:"Armor,omitempty"`
}

// PowerInfo is positive for producers and negative for consumers.
type PowerInfo struct {
	Amount int `yaml:"Amount"`
}

type ValuedInfo struct {
	Cost int `yaml:"Cost"`
}

type BuildableInfo struct {
	Queue []string `yaml:"Queue"`
	// BuildDuration overrides the cost-derived build time when > 0 (ticks).
	BuildDuration int `yaml:"BuildDuration,omitempty"`
}

type ProductionInfo struct {
	Produces []string `yaml:"Produces"`
	// Exit is the cell offset where produced actors appear.
	Exit [2]int `yaml:"Exit,omitempty"`
}

// RevealsShroudInfo gives the owner sight of everything within Range of the actor.
type RevealsShroudInfo struct {
	Range WRange `yaml:"Range"`
}

type WallInfo struct {
	CrushClasses []string `yaml:"CrushClasses"`
	CrushSound   string   `yaml:"CrushSound,omitempty"`
}

type CrushableInfantryInfo struct {
	CrushSound      string   `yaml:"CrushSound"`
	CorpseSequence  string   `yaml:"CorpseSequence"`
	CrushClasses    []string `yaml:"CrushClasses"`
	WarnProbability int      `yaml:"WarnProbability"`
}

func DefaultCrushableInfantryInfo() CrushableInfantryInfo {
	return CrushableInfantryInfo{
		CrushSound:      "squish2.aud",
		CorpseSequence:  "die-crushed",
		CrushClasses:    []string{"infantry"},
		WarnProbability: 75,
	}
}

func (i *CrushableInfantryInfo) UnmarshalYAML(n *yaml.Node) error {
	type plain CrushableInfantryInfo
	p := plain(DefaultCrushableInfantryInfo())
	if err := n.Decode(&p); err != nil {
		return err
	}
	*i = CrushableInfantryInfo(p)
	return nil
}

type CrateInfo struct {
	// Lifetime in seconds (25 ticks each).
	Lifetime     int               `yaml:"Lifetime"`
	TerrainTypes []string          `yaml:"TerrainTypes,omitempty"`
	CrushClass   string            `yaml:"CrushClass"`
	Actions      []CrateActionInfo `yaml:"Actions,omitempty"`
}

func (i *CrateInfo) UnmarshalYAML(n *yaml.Node) error {
	type plain CrateInfo
	p := plain{Lifetime: 5, CrushClass: "crate"}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*i = CrateInfo(p)
	return nil
}

type CrateActionInfo struct {
	Type            string `yaml:"Type"`
	SelectionShares int    `yaml:"SelectionShares"`

	Amount int    `yaml:"Amount,omitempty"`
	Weapon string `yaml:"Weapon,omitempty"`
	Unit   string `yaml:"Unit,omitempty"`
}

type ArmamentInfo struct {
	Weapon string `yaml:"Weapon"`
	// FirepowerPercent scales warhead damage (100 = unmodified).
	FirepowerPercent int `yaml:"FirepowerPercent,omitempty"`
}
