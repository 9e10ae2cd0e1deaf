package model

import "fmt"

type TerrainInfo struct {
	Type        string   `yaml:"-"`
	TargetTypes []string `yaml:"TargetTypes"`
}

// Map is a bounded grid of terrain cells.
type Map struct {
	Width  int
	Height int

	tiles   []string
	terrain map[string]TerrainInfo
}

// NewMap fills every cell with fill; fill must be a known terrain type.
func NewMap(width, height int, terrain map[string]TerrainInfo, fill string) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bad map size %dx%d", width, height)
	}
	if _, ok := terrain[fill]; !ok {
		return nil, fmt.Errorf("unknown terrain type %q", fill)
	}
	m := &Map{Width: width, Height: height, tiles: make([]string, width*height), terrain: terrain}
	for i := range m.tiles {
		m.tiles[i] = fill
	}
	return m, nil
}

func (m *Map) Contains(c CPos) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < m.Width && c.Y < m.Height
}

func (m *Map) SetTerrain(c CPos, typ string) error {
	if !m.Contains(c) {
		return fmt.Errorf("cell %v out of bounds", c)
	}
	if _, ok := m.terrain[typ]; !ok {
		return fmt.Errorf("unknown terrain type %q", typ)
	}
	m.tiles[c.Y*m.Width+c.X] = typ
	return nil
}

// TerrainType returns "" for cells outside the map.
func (m *Map) TerrainType(c CPos) string {
	if !m.Contains(c) {
		return ""
	}
	return m.tiles[c.Y*m.Width+c.X]
}

func (m *Map) TerrainTargetTypes(c CPos) []string {
	return m.terrain[m.TerrainType(c)].TargetTypes
}

func (m *Map) CellContaining(p WPos) CPos { return CellContaining(p) }
func (m *Map) CenterOfCell(c CPos) WPos   { return CenterOfCell(c) }

// Clamp pulls c inside the map bounds.
func (m *Map) Clamp(c CPos) CPos {
	c.X = max(0, min(c.X, m.Width-1))
	c.Y = max(0, min(c.Y, m.Height-1))
	return c
}
