package models

import "math"

const (
	// CellSize is the edge length of a coarse region cell in world units.
	CellSize float32 = 32

	// PositionEpsilon is the tolerance for approximate position equality.
	PositionEpsilon = 0.1

	// TicksPerSecond is the logical tick rate of the hosting server.
	TicksPerSecond float32 = 20
)

// Position is a world-space coordinate. The world is horizontally unbounded;
// the y axis is carried along but ignored by all horizontal-plane math.
type Position struct {
	X float32
	Y float32
	Z float32
}

func NewPosition(x, y, z float32) Position {
	return Position{X: x, Y: y, Z: z}
}

// Cell returns the coarse region cell coordinates holding the position.
func (p Position) Cell() (int32, int32) {
	return int32(math.Floor(float64(p.X / CellSize))), int32(math.Floor(float64(p.Z / CellSize)))
}

func (p Position) ApproxEqual(o Position) bool {
	return EqualWithEpsilon(p.X, o.X, PositionEpsilon) &&
		EqualWithEpsilon(p.Y, o.Y, PositionEpsilon) &&
		EqualWithEpsilon(p.Z, o.Z, PositionEpsilon)
}

// DistanceXZ returns the horizontal-plane distance between two positions.
func (p Position) DistanceXZ(o Position) float32 {
	return float32(math.Sqrt(float64(p.DistanceSqXZ(o))))
}

// DistanceSqXZ returns the squared horizontal-plane distance between two
// positions. The y components are not part of visibility checks.
func (p Position) DistanceSqXZ(o Position) float32 {
	dx := p.X - o.X
	dz := p.Z - o.Z
	return dx*dx + dz*dz
}

func Add(a Position, b Position) Position {
	return Position{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func Sub(a Position, b Position) Position {
	return Position{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func Mul(a Position, s float32) Position {
	return Position{X: a.X * s, Y: a.Y * s, Z: a.Z * s}
}

func EqualWithEpsilon(a float32, b float32, epsilon float64) bool {
	return math.Abs(float64(a-b)) <= epsilon
}
