package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/trapline/common"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// Hit boxes use cp.BB in world space with y down, so B is the top edge and T
// the bottom one, as for the level solids.

// platformBounds is the platform rect: Anchor is its top-center at rest.
func platformBounds(a *component.Actor) cp.BB {
	top := a.Geometry.Anchor.Y + a.Visual.Offset
	hw := a.Geometry.Size.X / 2
	return cp.BB{
		L: a.Geometry.Anchor.X - hw,
		B: top,
		R: a.Geometry.Anchor.X + hw,
		T: top + a.Geometry.Size.Y,
	}
}

// HitBox returns the actor's current hit box. Spikes and blades are centered
// on their position; platforms hang from their top-center.
func HitBox(a *component.Actor) cp.BB {
	if a == nil {
		return cp.BB{}
	}
	if a.Kind == component.KindDropPlatform {
		return platformBounds(a)
	}
	return cp.NewBBForExtents(a.Position(), a.Geometry.Size.X/2, a.Geometry.Size.Y/2)
}

// Lethal computes the collision gate from the actor's state. Opacity plays
// no part in it.
func Lethal(a *component.Actor) bool {
	if a == nil {
		return false
	}
	if a.Revealed {
		return true
	}
	if a.Decoy {
		return false
	}
	switch a.Kind {
	case component.KindRetractable:
		return a.Visual.Reveal > 0 && common.ApproxGE(a.Visual.Reveal, a.ArmThreshold)
	case component.KindVibrating:
		return true
	case component.KindDropPlatform:
		return a.DropState.HazardArmed
	}
	return false
}

// GateSystem refreshes every actor's collision gate after the kind systems
// ran, and re-asserts the frozen state of revealed actors.
type GateSystem struct{}

func NewGateSystem() *GateSystem { return &GateSystem{} }

func (s *GateSystem) Post(w *ecs.World, e ecs.Entity, a *component.Actor) {
	Gate(a)
}

// Gate applies the gate rule to one actor.
func Gate(a *component.Actor) {
	if a == nil {
		return
	}
	if a.Revealed {
		a.GateOpen = true
		a.Visual.Opacity = 1
		return
	}
	a.GateOpen = Lethal(a)
}

// IsLethal is the collision gate as seen by collaborators.
func IsLethal(a *component.Actor) bool {
	return a != nil && a.GateOpen
}
