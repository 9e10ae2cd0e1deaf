// Package rules loads the declarative game rules: terrain, actors, weapons,
// production queues and AI desires.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"rtscore.dev/internal/sim/desire"
	"rtscore.dev/internal/sim/production"
	"rtscore.dev/internal/sim/weapons"
	"rtscore.dev/internal/sim/world/kernel/model"
)

// Version is the only rules document version this build understands.
const Version = 1

// Files in load order. The ruleset digest hashes their digests in this order.
var Files = []string{"terrain", "actors", "weapons", "queues", "desires"}

type Ruleset struct {
	Terrain map[string]model.TerrainInfo
	Actors  map[string]*model.ActorInfo
	Weapons map[string]*weapons.WeaponInfo
	Queues  map[string]production.QueueInfo
	Desires desire.BuildList

	// Digests holds the sha256 of each raw file, keyed by document name.
	Digests map[string]string
	Digest  string
}

func (r *Ruleset) Actor(name string) (*model.ActorInfo, bool) {
	a, ok := r.Actors[name]
	return a, ok
}

func (r *Ruleset) Weapon(name string) (*weapons.WeaponInfo, bool) {
	w, ok := r.Weapons[name]
	return w, ok
}

// QueueTypes returns the declared queue types sorted.
func (r *Ruleset) QueueTypes() []string {
	return slices.Sorted(maps.Keys(r.Queues))
}

func Load(dir string) (*Ruleset, error) {
	rs := &Ruleset{Digests: map[string]string{}}
	raws := map[string][]byte{}
	for _, name := range Files {
		raw, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
		if err != nil {
			return nil, err
		}
		raws[name] = raw
	}
	if err := rs.decode(raws); err != nil {
		return nil, err
	}
	return rs, nil
}

// Parse builds a ruleset from in-memory documents keyed like Files.
func Parse(docs map[string][]byte) (*Ruleset, error) {
	rs := &Ruleset{Digests: map[string]string{}}
	for _, name := range Files {
		if _, ok := docs[name]; !ok {
			return nil, fmt.Errorf("missing rules document %s", name)
		}
	}
	if err := rs.decode(docs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *Ruleset) decode(raws map[string][]byte) error {
	steps := []struct {
		name string
		fn   func(*yaml.Node) error
	}{
		{"terrain", rs.decodeTerrain},
		{"actors", rs.decodeActors},
		{"weapons", rs.decodeWeapons},
		{"queues", rs.decodeQueues},
		{"desires", rs.decodeDesires},
	}
	for _, s := range steps {
		raw := raws[s.name]
		file := s.name + ".yaml"
		rs.Digests[s.name] = sha256Hex(raw)
		if err := validateYAML(s.name, raw); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		body, err := documentBody(raw, s.name)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := s.fn(body); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	if err := rs.link(); err != nil {
		return err
	}

	var b strings.Builder
	for _, name := range Files {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(rs.Digests[name])
		b.WriteByte('\n')
	}
	rs.Digest = sha256Hex([]byte(b.String()))
	return nil
}

// documentBody checks the version key and returns the node under key.
func documentBody(raw []byte, key string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping document")
	}
	root := doc.Content[0]
	var body *yaml.Node
	version := 0
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		switch k.Value {
		case "version":
			if err := v.Decode(&version); err != nil {
				return nil, fmt.Errorf("version: %w", err)
			}
		case key:
			body = v
		}
	}
	if version != Version {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	if body == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	return body, nil
}

// pairs returns the key/value nodes of a mapping node in document order.
func pairs(n *yaml.Node) [][2]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, [2]*yaml.Node{n.Content[i], n.Content[i+1]})
	}
	return out
}

func (rs *Ruleset) decodeTerrain(n *yaml.Node) error {
	rs.Terrain = map[string]model.TerrainInfo{}
	for _, p := range pairs(n) {
		var ti model.TerrainInfo
		if err := p[1].Decode(&ti); err != nil {
			return fmt.Errorf("terrain %s: %w", p[0].Value, err)
		}
		ti.Type = p[0].Value
		rs.Terrain[ti.Type] = ti
	}
	return nil
}

func (rs *Ruleset) decodeActors(n *yaml.Node) error {
	rs.Actors = map[string]*model.ActorInfo{}
	for _, p := range pairs(n) {
		name := p[0].Value
		info := &model.ActorInfo{}
		if err := p[1].Decode(info); err != nil {
			return fmt.Errorf("actor %s: %w", name, err)
		}
		info.Name = name
		for i := range info.Armaments {
			if info.Armaments[i].FirepowerPercent == 0 {
				info.Armaments[i].FirepowerPercent = 100
			}
		}
		rs.Actors[name] = info
	}
	return nil
}

func (rs *Ruleset) decodeWeapons(n *yaml.Node) error {
	rs.Weapons = map[string]*weapons.WeaponInfo{}
	for _, p := range pairs(n) {
		w, err := decodeWeapon(p[0].Value, p[1])
		if err != nil {
			return fmt.Errorf("weapon %s: %w", p[0].Value, err)
		}
		rs.Weapons[w.Name] = w
	}
	return nil
}

// decodeWeapon splits a weapon record into scalar fields, the optional
// Projectile sub-record and Warhead* sub-records in document order.
func decodeWeapon(name string, n *yaml.Node) (*weapons.WeaponInfo, error) {
	w := weapons.DefaultWeaponInfo(name)
	scalars := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range pairs(n) {
		key, val := p[0].Value, p[1]
		switch {
		case key == "Projectile":
			typ, err := subRecordType(val)
			if err != nil {
				return nil, fmt.Errorf("projectile: %w", err)
			}
			pi, err := weapons.NewProjectile(typ, val)
			if err != nil {
				return nil, err
			}
			w.Projectile = pi
		case strings.HasPrefix(key, "Warhead"):
			typ, err := subRecordType(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			wh, err := weapons.NewWarhead(typ, val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			w.Warheads = append(w.Warheads, wh)
		default:
			scalars.Content = append(scalars.Content, p[0], p[1])
		}
	}
	if err := scalars.Decode(&w); err != nil {
		return nil, err
	}
	w.Name = name
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

func subRecordType(n *yaml.Node) (string, error) {
	var head struct {
		Type string `yaml:"Type"`
	}
	if err := n.Decode(&head); err != nil {
		return "", err
	}
	if head.Type == "" {
		return "", fmt.Errorf("missing Type")
	}
	return head.Type, nil
}

func (rs *Ruleset) decodeQueues(n *yaml.Node) error {
	var list []production.QueueInfo
	if err := n.Decode(&list); err != nil {
		return err
	}
	rs.Queues = make(map[string]production.QueueInfo, len(list))
	for _, q := range list {
		if _, dup := rs.Queues[q.Type]; dup {
			return fmt.Errorf("duplicate queue %s", q.Type)
		}
		rs.Queues[q.Type] = q
	}
	return nil
}

func (rs *Ruleset) decodeDesires(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("desires must be a list")
	}
	rs.Desires = nil
	for i, rec := range n.Content {
		d := desire.Desire{}
		for _, p := range pairs(rec) {
			key, val := p[0].Value, p[1]
			switch {
			case strings.Split(key, "@")[0] == "Met":
				var s desire.Satisfaction
				if err := val.Decode(&s); err != nil {
					return fmt.Errorf("desire %d %s: %w", i, key, err)
				}
				d.Satisfactions = append(d.Satisfactions, s)
			case key == "Name":
				d.Name = val.Value
			case key == "Target":
				d.Target = val.Value
			}
		}
		if d.Name == "" {
			d.Name = d.Target
		}
		rs.Desires = append(rs.Desires, d)
	}
	return nil
}

// link resolves cross-document references.
func (rs *Ruleset) link() error {
	names := slices.Sorted(maps.Keys(rs.Actors))
	for _, name := range names {
		a := rs.Actors[name]
		for _, arm := range a.Armaments {
			if _, ok := rs.Weapons[arm.Weapon]; !ok {
				return fmt.Errorf("actors.yaml: actor %s: unknown weapon %q", name, arm.Weapon)
			}
		}
		if a.Buildable != nil {
			for _, q := range a.Buildable.Queue {
				if _, ok := rs.Queues[q]; !ok {
					return fmt.Errorf("actors.yaml: actor %s: unknown queue %q", name, q)
				}
			}
		}
		if a.Production != nil {
			for _, q := range a.Production.Produces {
				if _, ok := rs.Queues[q]; !ok {
					return fmt.Errorf("actors.yaml: actor %s: produces unknown queue %q", name, q)
				}
			}
		}
		if a.Crate != nil {
			for _, ca := range a.Crate.Actions {
				if ca.Type == "Explode" {
					if _, ok := rs.Weapons[ca.Weapon]; !ok {
						return fmt.Errorf("actors.yaml: crate %s: unknown weapon %q", name, ca.Weapon)
					}
				}
				if ca.Type == "GiveUnit" {
					if _, ok := rs.Actors[ca.Unit]; !ok {
						return fmt.Errorf("actors.yaml: crate %s: unknown unit %q", name, ca.Unit)
					}
				}
			}
		}
	}
	for _, d := range rs.Desires {
		if _, ok := rs.Actors[d.Target]; !ok {
			return fmt.Errorf("desires.yaml: desire %s: unknown target %q", d.Name, d.Target)
		}
	}
	return nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Summary lists record counts per document, for startup logs.
func (rs *Ruleset) Summary() string {
	counts := map[string]int{
		"terrain": len(rs.Terrain),
		"actors":  len(rs.Actors),
		"weapons": len(rs.Weapons),
		"queues":  len(rs.Queues),
		"desires": len(rs.Desires),
	}
	parts := make([]string, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
