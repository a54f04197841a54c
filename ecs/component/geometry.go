package component

import "strings"

// Orientation is the surface a hazard is mounted on.
type Orientation int

const (
	OrientFloor Orientation = iota
	OrientCeiling
	OrientLeft
	OrientRight
)

func (o Orientation) String() string {
	switch o {
	case OrientFloor:
		return "floor"
	case OrientCeiling:
		return "ceiling"
	case OrientLeft:
		return "left"
	case OrientRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseOrientation accepts the names produced by String. Empty means floor.
func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "floor":
		return OrientFloor, true
	case "ceiling":
		return OrientCeiling, true
	case "left":
		return OrientLeft, true
	case "right":
		return OrientRight, true
	}
	return OrientFloor, false
}

// Direction is the unit vector a hazard extends along, pointing away from its
// mounting surface.
func (o Orientation) Direction() Vec {
	switch o {
	case OrientCeiling:
		return Vec{Y: 1}
	case OrientLeft:
		return Vec{X: 1}
	case OrientRight:
		return Vec{X: -1}
	default:
		return Vec{Y: -1}
	}
}

// Geometry places a hazard. Offsets are distances along Orientation.Direction
// from Anchor; Size is the hit-box extent reported to collaborators.
type Geometry struct {
	Anchor        Vec
	Orientation   Orientation
	HiddenOffset  float64
	VisibleOffset float64
	Size          Vec
}

// PositionAt returns the world position for a given offset.
func (g Geometry) PositionAt(offset float64) Vec {
	return g.Anchor.Add(g.Orientation.Direction().Mult(offset))
}
