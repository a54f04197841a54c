package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/trapline/ecs/component"
)

// SignedDistance is the mover's horizontal offset from anchor; negative means
// the mover is to the left.
func SignedDistance(m component.Mover, anchor component.Vec) float64 {
	return m.X - anchor.X
}

// DirectionMatches applies a direction filter to a signed distance. A mover
// directly above the anchor satisfies both sides.
func DirectionMatches(dx float64, f component.DirectionFilter) bool {
	switch f {
	case component.DirectionFromLeft:
		return dx <= 0
	case component.DirectionFromRight:
		return dx >= 0
	default:
		return true
	}
}

// WithinDistance reports |dx| <= distance; the boundary is inclusive.
func WithinDistance(m component.Mover, anchor component.Vec, distance float64) bool {
	return math.Abs(SignedDistance(m, anchor)) <= distance
}

// Triggers reports whether the mover satisfies a proximity rule.
func Triggers(m component.Mover, anchor component.Vec, rule component.ProximityRule) bool {
	if !WithinDistance(m, anchor, rule.TriggerDistance) {
		return false
	}
	return DirectionMatches(SignedDistance(m, anchor), rule.Direction)
}

// JumpDetected reports a falling mover that is past the platform's current
// top edge by margin while horizontally over the platform.
func JumpDetected(m component.Mover, a *component.Actor, rule component.ProximityRule) bool {
	if a == nil || m.VelocityY <= 0 {
		return false
	}
	b := platformBounds(a)
	zone := cp.BB{L: b.L, B: b.B + rule.JumpMargin, R: b.R, T: math.Inf(1)}
	return zone.ContainsVect(cp.Vector{X: m.X, Y: m.Y})
}
