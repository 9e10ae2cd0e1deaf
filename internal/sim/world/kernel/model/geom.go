package model

// CellSize is the number of world units along one side of a map cell.
const CellSize = 1024

// WPos is a position in world units.
type WPos struct {
	X int
	Y int
	Z int
}

// WVec is a displacement in world units.
type WVec struct {
	X int
	Y int
	Z int
}

// WRange is a distance in world units.
type WRange int

// Cells converts a whole number of cells into a range.
func Cells(n int) WRange { return WRange(n * CellSize) }

// CPos is a map cell coordinate.
type CPos struct {
	X int
	Y int
}

func (p WPos) Sub(o WPos) WVec { return WVec{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z} }
func (p WPos) Add(v WVec) WPos { return WPos{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z} }

func (v WVec) LengthSquared() int64 {
	x, y, z := int64(v.X), int64(v.Y), int64(v.Z)
	return x*x + y*y + z*z
}

// Length is the integer (floor) euclidean length of v.
func (v WVec) Length() int { return int(ISqrt(v.LengthSquared())) }

// HorizontalLength ignores Z.
func (v WVec) HorizontalLength() int {
	x, y := int64(v.X), int64(v.Y)
	return int(ISqrt(x*x + y*y))
}

// Distance is the floor euclidean distance between a and b.
func Distance(a, b WPos) int { return a.Sub(b).Length() }

// ISqrt returns floor(sqrt(n)) for n >= 0 using integer Newton iteration,
// so every peer computes the same value.
func ISqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

func (c CPos) Add(dx, dy int) CPos { return CPos{X: c.X + dx, Y: c.Y + dy} }

// floorDiv rounds toward negative infinity so negative coordinates map to
// the cell that actually contains them.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CellContaining returns the cell that holds pos.
func CellContaining(pos WPos) CPos {
	return CPos{X: floorDiv(pos.X, CellSize), Y: floorDiv(pos.Y, CellSize)}
}

// CenterOfCell returns the world position at the middle of c.
func CenterOfCell(c CPos) WPos {
	return WPos{X: c.X*CellSize + CellSize/2, Y: c.Y*CellSize + CellSize/2}
}
